package query

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"casebook/internal/database"
	"casebook/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func day(n int) time.Time {
	return time.Date(2024, 1, n, 10, 0, 0, 0, time.UTC)
}

// 30 платежей: дата — 1..30 января, сумма убывает, каждый третий с клиентом, чётные оплачены.
func seedPayments(t *testing.T, db *gorm.DB) {
	t.Helper()

	client := models.Client{Name: "Acme", IsActive: true}
	require.NoError(t, db.Create(&client).Error)

	for i := 1; i <= 30; i++ {
		p := models.Payment{
			Date:        day(i),
			Amount:      decimal.NewFromInt(int64(1000 - i)),
			Type:        models.PaymentIncome,
			Description: strPtr(fmt.Sprintf("invoice %02d", i)),
			IsPaid:      i%2 == 0,
		}
		if i%3 == 0 {
			p.ClientID = &client.ID
			p.Notes = strPtr("Retainer for ACME")
		}
		if i > 25 {
			p.Type = models.PaymentExpense
		}
		require.NoError(t, db.Create(&p).Error)
	}
}

func parse(t *testing.T, raw string) Params {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	p, err := Parse(v)
	require.NoError(t, err)
	return p
}

func descriptions(items []models.Payment) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, *p.Description)
	}
	return out
}

func TestPaged_OffsetMatchesSortedRows(t *testing.T) {
	db := database.OpenTest(t)
	seedPayments(t, db)

	page, err := Paged[models.Payment](db, Payments, parse(t, "page=2&pageSize=7"))
	require.NoError(t, err)

	assert.Equal(t, int64(30), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 7, page.PageSize)
	assert.Equal(t, []string{
		"invoice 08", "invoice 09", "invoice 10", "invoice 11", "invoice 12", "invoice 13", "invoice 14",
	}, descriptions(page.Items))
}

func TestPaged_LastPartialAndBeyond(t *testing.T) {
	db := database.OpenTest(t)
	seedPayments(t, db)

	page, err := Paged[models.Payment](db, Payments, parse(t, "page=4&pageSize=8"))
	require.NoError(t, err)
	assert.Len(t, page.Items, 6)

	page, err = Paged[models.Payment](db, Payments, parse(t, "page=9&pageSize=8"))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, int64(30), page.Total)
}

func TestPaged_ClampedPageSize(t *testing.T) {
	db := database.OpenTest(t)
	seedPayments(t, db)

	page, err := Paged[models.Payment](db, Payments, parse(t, "pageSize=0&page=-3"))
	require.NoError(t, err)
	assert.Equal(t, 1, page.PageSize)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "invoice 01", *page.Items[0].Description)
}

func TestPaged_SortByAmountDesc(t *testing.T) {
	db := database.OpenTest(t)
	seedPayments(t, db)

	// суммы убывают с датой, поэтому amount asc = последние даты
	page, err := Paged[models.Payment](db, Payments, parse(t, "sortBy=amount&sortDir=asc&pageSize=3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice 30", "invoice 29", "invoice 28"}, descriptions(page.Items))

	page, err = Paged[models.Payment](db, Payments, parse(t, "sortBy=Amount&sortDir=DESC&pageSize=2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice 01", "invoice 02"}, descriptions(page.Items))
}

func TestPaged_Filters(t *testing.T) {
	db := database.OpenTest(t)
	seedPayments(t, db)

	tests := []struct {
		name  string
		query string
		total int64
	}{
		{"inclusive date range", "from=2024-01-05&to=2024-01-09", 5},
		{"client", "clientId=1", 10},
		{"search notes case-insensitive", "search=retainer", 10},
		{"search description", "search=INVOICE 1", 10},
		{"search no match", "search=zzz", 0},
		{"paid", "status=paid", 15},
		{"unpaid and client", "status=unpaid&clientId=1", 5},
		{"expense type", "type=expense", 5},
		{"like wildcard literal", "search=%25", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Paged[models.Payment](db, Payments, parse(t, tt.query))
			require.NoError(t, err)
			assert.Equal(t, tt.total, page.Total)
			assert.Len(t, page.Items, int(tt.total))
		})
	}
}

func TestPaged_RejectsUnknownSort(t *testing.T) {
	db := database.OpenTest(t)

	_, err := Paged[models.Payment](db, Payments, parse(t, "sortBy=title"))
	assert.Error(t, err)
}

func TestAll_ClientsSearchAnyField(t *testing.T) {
	db := database.OpenTest(t)

	clients := []models.Client{
		{Name: "Ivanov", Email: strPtr("ivanov@mail.test"), IsActive: true},
		{Name: "Petrov", Company: strPtr("Horns and Hooves LLC"), IsActive: true},
		{Name: "Sidorov", Address: strPtr("1 Hoover street"), IsActive: false},
		{Name: "Smirnov", Phone: strPtr("+7 900 000"), IsActive: true},
	}
	require.NoError(t, db.Create(&clients).Error)

	got, err := All[models.Client](db, Clients, parse(t, "search=HOO"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Petrov", got[0].Name)
	assert.Equal(t, "Sidorov", got[1].Name)

	got, err = All[models.Client](db, Clients, parse(t, "search=hoo&isActive=true"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Petrov", got[0].Name)

	got, err = All[models.Client](db, Clients, parse(t, "search=900"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Smirnov", got[0].Name)

	got, err = All[models.Client](db, Clients, parse(t, "sortDir=desc"))
	require.NoError(t, err)
	assert.Equal(t, "Smirnov", got[0].Name)
}

func TestAll_ClientsSearchCyrillic(t *testing.T) {
	db := database.OpenTest(t)

	clients := []models.Client{
		{Name: "ООО Иванов", Address: strPtr("г. Москва, ул. Ленина"), IsActive: true},
		{Name: "Петров", Company: strPtr("Рога и Копыта"), IsActive: true},
		{Name: "Ivanov Trading", IsActive: true},
	}
	require.NoError(t, db.Create(&clients).Error)

	for _, term := range []string{"иванов", "Иванов", "ИВАНОВ", "ооо иВаН"} {
		got, err := All[models.Client](db, Clients, Params{Search: term})
		require.NoError(t, err, term)
		require.Len(t, got, 1, term)
		assert.Equal(t, "ООО Иванов", got[0].Name)
	}

	got, err := All[models.Client](db, Clients, Params{Search: "КОПЫТ"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Петров", got[0].Name)

	got, err = All[models.Client](db, Clients, Params{Search: "москва"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = All[models.Client](db, Clients, Params{Search: "ivan"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ivanov Trading", got[0].Name)

	page, err := Paged[models.Client](db, Clients, Params{Search: "ИВАНОВ", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestPaged_HugePageIsEmptyNotFirst(t *testing.T) {
	db := database.OpenTest(t)
	seedPayments(t, db)

	p := parse(t, "page=4611686018427387904&pageSize=500")
	assert.GreaterOrEqual(t, p.Offset(), 0)

	page, err := Paged[models.Payment](db, Payments, p)
	require.NoError(t, err)
	assert.Equal(t, int64(30), page.Total)
	assert.Empty(t, page.Items)
	assert.Equal(t, p.Page, page.Page)
}

func TestAll_CasesStatusAndClient(t *testing.T) {
	db := database.OpenTest(t)

	client := models.Client{Name: "Acme", IsActive: true}
	require.NoError(t, db.Create(&client).Error)

	cases := []models.ClientCase{
		{Title: "Lease dispute", Status: models.CaseOpen, ClientID: &client.ID},
		{Title: "Tax audit", Status: models.CaseClosed, ClientID: &client.ID},
		{Title: "Trademark", Status: models.CaseOpen, Description: strPtr("lease of brand")},
	}
	require.NoError(t, db.Create(&cases).Error)

	got, err := All[models.ClientCase](db, Cases, parse(t, "status=open&sortBy=title"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Lease dispute", got[0].Title)

	got, err = All[models.ClientCase](db, Cases, parse(t, "clientId="+fmt.Sprint(client.ID)+"&search=lease"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lease dispute", got[0].Title)

	_, err = All[models.ClientCase](db, Cases, parse(t, "status=won"))
	assert.Error(t, err)

}
