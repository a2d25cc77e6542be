package listview

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fracc/internal/format"
)

type resident struct {
	Name   string
	Email  string
	Status string
	When   string
}

func residentSchema() Schema[resident] {
	return Schema[resident]{
		Searchable: func(r resident) []string {
			return []string{r.Name, r.Email, format.DateLabel(r.When, time.UTC)}
		},
		Facets: map[string]func(resident, string) bool{
			"estado": EqualFold(func(r resident) string { return r.Status }),
		},
	}
}

func residents(n int) []resident {
	out := make([]resident, n)
	for i := range out {
		out[i] = resident{Name: fmt.Sprintf("Residente %02d", i+1), Status: "activo"}
	}
	return out
}

func TestPaginateClampsRequestedPage(t *testing.T) {
	p := Paginate(residents(25), 10, 999)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 20, p.StartIndex)
	assert.Len(t, p.Items, 5)
}

func TestPaginateNormalizesInputs(t *testing.T) {
	p := Paginate(residents(25), 10, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.StartIndex)

	p = Paginate(residents(25), 10, -4)
	assert.Equal(t, 1, p.Page)

	p = Paginate(residents(25), 0, 1)
	assert.Equal(t, DefaultPageSize, p.Size)
}

func TestPaginateHonorsLargePageSizes(t *testing.T) {
	p := Paginate(residents(250), 150, 1)
	assert.Equal(t, 2, p.TotalPages)
	assert.Len(t, p.Items, 150)

	p = Paginate(residents(250), 150, 2)
	assert.Equal(t, 150, p.StartIndex)
	assert.Len(t, p.Items, 100)
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate([]resident{}, 10, 3)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.TotalPages)
	assert.Empty(t, p.Items)
	assert.Equal(t, "Mostrando 0-0 de 0", p.Summary())
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrev())
}

func TestPaginateCoversEveryItemOnce(t *testing.T) {
	for _, n := range []int{1, 9, 10, 11, 23, 100} {
		for _, size := range []int{1, 3, 10} {
			items := residents(n)
			first := Paginate(items, size, 1)
			require.Equal(t, 0, first.StartIndex)

			var joined []resident
			for page := 1; page <= first.TotalPages; page++ {
				p := Paginate(items, size, page)
				require.Equal(t, len(joined), p.StartIndex, "pages must be contiguous")
				joined = append(joined, p.Items...)
			}
			assert.Equal(t, items, joined, "n=%d size=%d", n, size)
		}
	}
}

func TestResidentsFooter(t *testing.T) {
	e := NewEngine(residentSchema(), residents(23), 10)

	p := e.View()
	assert.Equal(t, "Mostrando 1-10 de 23", p.Summary())
	assert.Equal(t, "Residente 01", p.Items[0].Name)

	e.Restore(State{Page: 3})
	p = e.View()
	assert.Equal(t, "Mostrando 21-23 de 23", p.Summary())
	assert.Equal(t, "Residente 21", p.Items[0].Name)
	assert.Equal(t, []int{1, 2, 3}, p.Numbers())
}

func TestIdentityPredicate(t *testing.T) {
	s := residentSchema()
	items := residents(7)
	items[3].Status = "inactivo"

	assert.Equal(t, items, s.Filter(items, s.BuildPredicate("", nil)))
	assert.Equal(t, items, s.Filter(items, s.BuildPredicate("   ", map[string]string{"estado": "todos"})))
	assert.Equal(t, items, s.Filter(items, s.BuildPredicate("", map[string]string{"desconocido": "x"})))
}

func TestPredicateCaseInsensitiveWithoutAccentFolding(t *testing.T) {
	s := residentSchema()
	ana := resident{Name: "Ana García Pérez", Email: "ana@example.com"}

	assert.True(t, s.BuildPredicate("garcía", nil)(ana))
	assert.True(t, s.BuildPredicate("  GARCÍA ", nil)(ana))
	assert.False(t, s.BuildPredicate("garcia", nil)(ana))
	assert.True(t, s.BuildPredicate("example", nil)(ana))
	assert.False(t, s.BuildPredicate("zzz", nil)(ana))
}

func TestPredicateMatchesFormattedDate(t *testing.T) {
	s := residentSchema()
	rec := resident{Name: "Luis", When: "2025-12-21T15:00:00Z"}
	label := format.DateLabel(rec.When, time.UTC)

	require.Contains(t, label, "Diciembre")
	assert.True(t, s.BuildPredicate("diciembre", nil)(rec))
	assert.True(t, s.BuildPredicate("21 de diciembre", nil)(rec))
	assert.False(t, s.BuildPredicate("2025-12", nil)(rec), "raw timestamps are not searchable")
}

func TestPredicateCombinesFiltersWithAnd(t *testing.T) {
	s := residentSchema()
	items := []resident{
		{Name: "Ana García", Status: "activo"},
		{Name: "Beto García", Status: "inactivo"},
		{Name: "Carla Ruiz", Status: "activo"},
	}
	got := s.Filter(items, s.BuildPredicate("garcía", map[string]string{"estado": "ACTIVO"}))
	require.Len(t, got, 1)
	assert.Equal(t, "Ana García", got[0].Name)
}

func TestFilterSortsWithoutTouchingSource(t *testing.T) {
	s := residentSchema()
	s.Less = func(a, b resident) bool { return a.Name > b.Name }
	items := residents(3)
	got := s.Filter(items, s.BuildPredicate("", nil))
	assert.Equal(t, "Residente 03", got[0].Name)
	assert.Equal(t, "Residente 01", items[0].Name)
}

func TestEngineResetsPageOnInputChange(t *testing.T) {
	e := NewEngine(residentSchema(), residents(25), 10)
	e.Restore(State{Page: 3})
	require.Equal(t, 3, e.View().Page)

	e.SetSearch("residente")
	assert.Equal(t, 1, e.State().Page)

	e.Restore(State{Search: "residente", Page: 2})
	e.SetFilter("estado", "activo")
	assert.Equal(t, 1, e.State().Page)
	assert.Equal(t, 25, e.View().Total)
}

func TestEngineFiltersOnEveryView(t *testing.T) {
	calls := 0
	s := residentSchema()
	search := s.Searchable
	s.Searchable = func(r resident) []string {
		calls++
		return search(r)
	}
	e := NewEngine(s, residents(5), 10)
	e.Restore(State{Search: "residente", Page: 9})
	p := e.View()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, e.State().Page, "the clamped page is stored back")
	assert.Equal(t, 5, calls)

	e.SetSearch("01")
	assert.Equal(t, 1, e.View().Total)
	assert.Equal(t, 10, calls)
}

func TestStateQueryRoundTrip(t *testing.T) {
	st := StateFromQuery(url.Values{"q": {"ana"}, "estado": {"pendiente"}, "page": {"2"}, "otro": {"x"}}, "estado")
	assert.Equal(t, "ana", st.Search)
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, map[string]string{"estado": "pendiente"}, st.Filters)
	assert.Equal(t, "todos", st.Filter("area"))

	q := st.Query(3)
	assert.True(t, strings.Contains(q, "page=3"))
	assert.True(t, strings.Contains(q, "estado=pendiente"))
	assert.NotContains(t, st.Query(1), "page=")
}
