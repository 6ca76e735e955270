package query

import "casebook/internal/models"

var Payments = Entity{
	Name:          "payments",
	DateColumn:    "date",
	ClientColumn:  "client_id",
	CaseColumn:    "client_case_id",
	SearchColumns: []string{"description", "notes"},
	Sorts: map[string]string{
		"date":      "date",
		"amount":    "amount",
		"createdat": "created_at",
	},
	DefaultSort: "date",
	Statuses: map[string]Cond{
		"paid":   {Query: "is_paid = ?", Args: []any{true}},
		"unpaid": {Query: "is_paid = ?", Args: []any{false}},
	},
	Types: map[string]Cond{
		string(models.PaymentIncome):  {Query: "type = ?", Args: []any{models.PaymentIncome}},
		string(models.PaymentExpense): {Query: "type = ?", Args: []any{models.PaymentExpense}},
	},
}

var Cases = Entity{
	Name:          "cases",
	DateColumn:    "created_at",
	ClientColumn:  "client_id",
	SearchColumns: []string{"title", "description"},
	Sorts: map[string]string{
		"createdat": "created_at",
		"title":     "title",
		"status":    "status",
	},
	DefaultSort: "createdat",
	Statuses:    caseStatuses(),
}

var Clients = Entity{
	Name:          "clients",
	DateColumn:    "created_at",
	ActiveColumn:  "is_active",
	SearchColumns: []string{"name", "email", "phone", "company", "address"},
	Sorts: map[string]string{
		"name":      "name",
		"createdat": "created_at",
	},
	DefaultSort: "name",
}

func caseStatuses() map[string]Cond {
	out := map[string]Cond{}
	for _, s := range []models.CaseStatus{
		models.CaseOpen, models.CaseInProgress, models.CaseOnHold, models.CaseClosed, models.CaseArchived,
	} {
		out[string(s)] = Cond{Query: "status = ?", Args: []any{s}}
	}
	return out
}
