package http

import (
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"fincalc/internal/calculators"
	"fincalc/internal/catalog"
	"fincalc/internal/format"
	"fincalc/internal/router"
)

// Page is what the route dispatcher resolves a path to. Template names the
// page body under templates/pages.
type Page struct {
	Template    string
	Title       string
	Path        string
	Status      int
	Breadcrumbs []Crumb
	Featured    []catalog.Entry
	Categories  []catalog.Category
	Calculator  *CalculatorView
}

// Crumb is one breadcrumb link.
type Crumb struct {
	Name string
	Path string
}

// CalculatorView is a calculator form with its latest outcome.
type CalculatorView struct {
	Entry   catalog.Entry
	Fields  []FieldView
	Results *ResultsView
}

// FieldView is one rendered form input.
type FieldView struct {
	Name     string
	Label    string
	Value    string
	Error    string
	Required bool
}

// ResultsView is the results partial. Errors replaces the rows when the
// submission was rejected.
type ResultsView struct {
	ID        string
	Rows      []ResultRow
	Schedule  []ScheduleRow
	ExportURL string
	Errors    []string
}

type ResultRow struct {
	Key   string
	Label string
	Value string
}

type ScheduleRow struct {
	Period    int
	Payment   string
	Principal string
	Interest  string
	Balance   string
}

const exportPath = "/export/schedule.csv"

// newPages builds the page route table. The table is fixed once built.
func (s *Server) newPages() *router.Dispatcher[Page] {
	var t router.Table[Page]
	t.Register(router.Exact("/"), s.homePage).
		Register(router.Exact("/calculators"), s.calculatorsPage).
		Register(router.MustPattern(`/calculator/([^/]+)`), s.calculatorPage).
		Register(router.Exact("/about"), staticPage("about", "About")).
		Register(router.Exact("/contact"), staticPage("contact", "Contact"))
	return t.Build(notFoundPage)
}

func (s *Server) homePage([]string) Page {
	return Page{Template: "home", Title: "Home", Status: http.StatusOK, Featured: s.catalog.Featured()}
}

func (s *Server) calculatorsPage([]string) Page {
	return Page{Template: "calculators", Title: "Calculators", Status: http.StatusOK, Categories: s.catalog.Categories()}
}

func (s *Server) calculatorPage(params []string) Page {
	entry, calc, ok := s.lookupCalculator(params[0])
	if !ok {
		return notFoundPage(nil)
	}
	return Page{
		Template:   "calculator",
		Title:      entry.Name,
		Status:     http.StatusOK,
		Calculator: &CalculatorView{Entry: entry, Fields: fieldViews(calc.Fields(), nil, nil)},
	}
}

func staticPage(template, title string) router.Handler[Page] {
	return func([]string) Page {
		return Page{Template: template, Title: title, Status: http.StatusOK}
	}
}

func notFoundPage([]string) Page {
	return Page{Template: "not_found", Title: "Page Not Found", Status: http.StatusNotFound}
}

// lookupCalculator resolves a catalog entry ID to an available calculator.
// Coming-soon entries are treated as unknown.
func (s *Server) lookupCalculator(id string) (catalog.Entry, calculators.Calculator, bool) {
	entry, ok := s.catalog.Find(id)
	if !ok || !entry.Available() {
		return catalog.Entry{}, nil, false
	}
	calc, ok := s.registry.Get(entry.Kind)
	if !ok {
		return catalog.Entry{}, nil, false
	}
	return entry, calc, true
}

// fieldViews renders the form inputs. Submitted values win over defaults so
// a rejected form comes back as the user typed it.
func fieldViews(fields []calculators.Field, submitted url.Values, errs calculators.FieldErrors) []FieldView {
	views := make([]FieldView, len(fields))
	for i, f := range fields {
		v := FieldView{Name: f.Name, Label: f.Label, Value: f.Default, Required: f.Required()}
		if submitted != nil {
			if raw, ok := submitted[f.Name]; ok && len(raw) > 0 {
				v.Value = raw[0]
			}
		}
		if fe := errs.For(f.Name); fe != nil {
			v.Error = fe.Label + " " + fe.Reason
		}
		views[i] = v
	}
	return views
}

func resultsView(id string, rs calculators.ResultSet, fields []calculators.Field, in calculators.Input, f *format.Formatter) *ResultsView {
	view := &ResultsView{ID: id}
	for _, r := range rs.Results {
		view.Rows = append(view.Rows, ResultRow{Key: r.Key, Label: r.Label, Value: f.Result(r)})
	}
	if len(rs.Schedule) > 0 {
		view.Schedule = make([]ScheduleRow, len(rs.Schedule))
		for i, e := range rs.Schedule {
			view.Schedule[i] = ScheduleRow{
				Period:    e.Period,
				Payment:   f.Currency(e.Payment),
				Principal: f.Currency(e.Principal),
				Interest:  f.Currency(e.Interest),
				Balance:   f.Currency(e.RemainingBalance),
			}
		}
		view.ExportURL = exportPath + "?" + calculators.Values(fields, in).Encode()
	}
	return view
}

func invalidView(id string, errs calculators.FieldErrors) *ResultsView {
	view := &ResultsView{ID: id}
	for _, e := range errs {
		view.Errors = append(view.Errors, e.Label+" "+e.Reason)
	}
	return view
}

// breadcrumbs turns /calculator/auto-loan into Home > Calculators > Auto loan.
// The bare /calculator prefix has no page, so it links to the listing.
func breadcrumbs(path string) []Crumb {
	crumbs := []Crumb{{Name: "Home", Path: "/"}}
	current := ""
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		current += "/" + part
		if current == "/calculator" {
			crumbs = append(crumbs, Crumb{Name: "Calculators", Path: "/calculators"})
			continue
		}
		crumbs = append(crumbs, Crumb{Name: crumbName(part), Path: current})
	}
	return crumbs
}

// crumbName turns a path segment into a label: dashes become spaces and the
// first letter is upper-cased.
func crumbName(segment string) string {
	name := strings.ReplaceAll(segment, "-", " ")
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + name[size:]
}
