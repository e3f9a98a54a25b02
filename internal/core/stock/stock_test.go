package stock

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

func item(id string, qty, alert int) domain.StockAssignment {
	return domain.StockAssignment{ID: id, Quantity: qty, LowStockAlert: alert}
}

func withProduct(it domain.StockAssignment, name, desc, category string) domain.StockAssignment {
	it.Product = domain.Product{
		ID:          "prod-" + it.ID,
		Name:        name,
		Description: desc,
		Category:    domain.CategoryRef{ID: "cat-" + category, Name: category},
	}
	return it
}

func ids(items []domain.StockAssignment) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestIsLowStock_InclusiveThreshold(t *testing.T) {
	assert.True(t, IsLowStock(item("a", 5, 5)))
	assert.False(t, IsLowStock(item("b", 6, 5)))
	assert.True(t, IsLowStock(item("c", 0, 0)))
	assert.True(t, IsLowStock(item("d", 2, 10)))

	for qty := 0; qty < 12; qty++ {
		for alert := 0; alert < 12; alert++ {
			assert.Equal(t, qty <= alert, IsLowStock(item("x", qty, alert)))
		}
	}
}

func TestFilterByStockLevel_AllReturnsInput(t *testing.T) {
	items := []domain.StockAssignment{item("a", 1, 5), item("b", 9, 5), item("c", 5, 5)}
	assert.Equal(t, items, FilterByStockLevel(items, LevelAll))
}

func TestFilterByStockLevel_PartitionsItems(t *testing.T) {
	items := []domain.StockAssignment{
		item("a", 1, 5), item("b", 9, 5), item("c", 5, 5), item("d", 6, 5), item("e", 0, 0),
	}

	low := FilterByStockLevel(items, LevelLow)
	normal := FilterByStockLevel(items, LevelNormal)

	assert.Equal(t, []string{"a", "c", "e"}, ids(low))
	assert.Equal(t, []string{"b", "d"}, ids(normal))
	assert.Equal(t, len(items), len(low)+len(normal))

	inLow := map[string]bool{}
	for _, it := range low {
		inLow[it.ID] = true
	}
	for _, it := range normal {
		assert.False(t, inLow[it.ID], "item %s in both subsets", it.ID)
	}
}

func TestFilterByStockLevel_Empty(t *testing.T) {
	assert.Empty(t, FilterByStockLevel(nil, LevelLow))
	assert.Empty(t, FilterByStockLevel(nil, LevelNormal))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"": LevelAll, "all": LevelAll, "LOW": LevelLow, " normal ": LevelNormal}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("critical")
	assert.True(t, errors.Is(err, domain.ErrInvalidStockLevel))
}

func stockFixture() []domain.StockAssignment {
	return []domain.StockAssignment{
		withProduct(item("a", 10, 2), "Crema Hidratante", "Para piel seca", "Cremas"),
		withProduct(item("b", 3, 5), "Jabón de Avena", "", "Jabones"),
		withProduct(item("c", 8, 1), "Aceite de Coco", "Ideal para crema corporal casera", "Aceites"),
		withProduct(item("d", 1, 1), "Crema de Manos", "", "Cremas"),
	}
}

func TestFilterBySearchAndCategory_EmptySearchAllCategories(t *testing.T) {
	items := stockFixture()
	assert.Equal(t, items, FilterBySearchAndCategory(items, "", "all"))
}

func TestFilterBySearchAndCategory_MatchesNameOrDescription(t *testing.T) {
	got := FilterBySearchAndCategory(stockFixture(), "CREMA", "all")
	assert.Equal(t, []string{"a", "c", "d"}, ids(got))
}

func TestFilterBySearchAndCategory_FoldsAccents(t *testing.T) {
	got := FilterBySearchAndCategory(stockFixture(), "JABÓN", "all")
	assert.Equal(t, []string{"b"}, ids(got))
}

func TestFilterBySearchAndCategory_ComposesWithCategory(t *testing.T) {
	got := FilterBySearchAndCategory(stockFixture(), "crema", "Cremas")
	assert.Equal(t, []string{"a", "d"}, ids(got))

	assert.Empty(t, FilterBySearchAndCategory(stockFixture(), "", "Perfumes"))
	assert.Empty(t, FilterBySearchAndCategory(stockFixture(), "", "cremas"), "category match is exact")
}

func TestMargin_SignedDifference(t *testing.T) {
	it := item("a", 1, 0)
	it.Product.DistributorPrice = decimal.RequireFromString("80.50")
	it.Product.ClientPrice = decimal.RequireFromString("120.00")
	assert.True(t, Margin(it).Equal(decimal.RequireFromString("39.50")))

	it.Product.ClientPrice = decimal.RequireFromString("70")
	assert.True(t, Margin(it).Equal(decimal.RequireFromString("-10.50")))
}

func TestDistinctCategories_FirstSeenOrder(t *testing.T) {
	items := stockFixture()
	items = append(items, item("e", 1, 1)) // no category
	assert.Equal(t, []string{"Cremas", "Jabones", "Aceites"}, DistinctCategories(items))
	assert.Empty(t, DistinctCategories(nil))
}

func TestSummarize(t *testing.T) {
	a := item("a", 10, 2)
	a.Product.DistributorPrice = decimal.NewFromInt(50)
	a.Product.ClientPrice = decimal.NewFromInt(80)
	b := item("b", 3, 5)
	b.Product.DistributorPrice = decimal.NewFromInt(20)
	b.Product.ClientPrice = decimal.NewFromInt(15)

	s := Summarize([]domain.StockAssignment{a, b})
	assert.Equal(t, 2, s.Items)
	assert.Equal(t, 13, s.Units)
	assert.Equal(t, 1, s.LowStock)
	assert.True(t, s.PotentialProfit.Equal(decimal.NewFromInt(285)), s.PotentialProfit.String())

	empty := Summarize(nil)
	assert.True(t, empty.PotentialProfit.IsZero())
}
