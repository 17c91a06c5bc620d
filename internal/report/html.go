package report

import (
	"embed"
	"html/template"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/riskbrief/internal/config"
	"github.com/nao1215/riskbrief/internal/model"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html.tmpl").Funcs(template.FuncMap{
	"truncate": TruncateSnippet,
}).ParseFS(templateFS, "templates/page.html.tmpl"))

// Option is one entry of a select element.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// DomainChoice is one checkbox of the trusted domain catalog.
type DomainChoice struct {
	Domain  string
	Checked bool
}

// FormState holds the values shown in the research form.
type FormState struct {
	// Query is the research question.
	Query string

	// Domains is the trusted source catalog with the checked entries.
	Domains []DomainChoice

	// ExtraDomains is free text holding domains outside the catalog.
	ExtraDomains string

	// FocusArea, ReportStyle and SearchDepth are the selected slugs.
	FocusArea   string
	ReportStyle string
	SearchDepth string

	// MaxResults is the requested result count as typed.
	MaxResults string

	// MaxResultsCeiling bounds the result count input.
	MaxResultsCeiling int
}

// NewFormState returns the form preselected with the configured defaults.
func NewFormState(cfg *config.Config) FormState {
	f := FormState{
		FocusArea:         cfg.Defaults.FocusArea.String(),
		ReportStyle:       cfg.Defaults.ReportStyle.String(),
		SearchDepth:       cfg.Defaults.SearchDepth.String(),
		MaxResults:        strconv.Itoa(cfg.Defaults.MaxResults),
		MaxResultsCeiling: cfg.MaxResultsCeiling,
	}
	f.SetDomains(cfg.TrustedSources, cfg.Defaults.TrustedDomains)
	return f
}

// SetDomains checks the catalog entries found in selected. Selected domains
// missing from the catalog are moved to ExtraDomains.
func (f *FormState) SetDomains(catalog, selected []string) {
	f.Domains = make([]DomainChoice, 0, len(catalog))
	for _, d := range catalog {
		f.Domains = append(f.Domains, DomainChoice{Domain: d, Checked: slices.Contains(selected, d)})
	}
	var extra []string
	for _, d := range selected {
		if !slices.Contains(catalog, d) {
			extra = append(extra, d)
		}
	}
	f.ExtraDomains = strings.Join(extra, "\n")
}

// FocusOptions lists the focus areas with the current one selected.
func (f FormState) FocusOptions() []Option {
	areas := model.FocusAreas()
	out := make([]Option, len(areas))
	for i, a := range areas {
		out[i] = Option{Value: a.String(), Label: a.Label(), Selected: a.String() == f.FocusArea}
	}
	return out
}

// StyleOptions lists the report styles with the current one selected.
func (f FormState) StyleOptions() []Option {
	styles := model.ReportStyles()
	out := make([]Option, len(styles))
	for i, s := range styles {
		out[i] = Option{Value: s.String(), Label: s.Label(), Selected: s.String() == f.ReportStyle}
	}
	return out
}

// DepthOptions lists the search depths with the current one selected.
func (f FormState) DepthOptions() []Option {
	depths := []model.SearchDepth{model.DepthBasic, model.DepthAdvanced}
	out := make([]Option, len(depths))
	for i, d := range depths {
		out[i] = Option{Value: d.String(), Label: d.String(), Selected: d.String() == f.SearchDepth}
	}
	return out
}

// Setup describes the provider configuration shown in the sidebar.
type Setup struct {
	SearchProvider     string
	SearchKeyEnv       string
	CompletionProvider string
	CompletionKeyEnv   string
	Model              string
}

// NewSetup extracts the setup instructions from the configuration.
func NewSetup(cfg *config.Config) Setup {
	return Setup{
		SearchProvider:     cfg.SearchProvider,
		SearchKeyEnv:       cfg.SearchKeyEnv(),
		CompletionProvider: cfg.CompletionProvider,
		CompletionKeyEnv:   cfg.CompletionKeyEnv(),
		Model:              cfg.Model(),
	}
}

// HTMLWriter renders the research page: the form, and the result or error
// panel of a run when there is one.
type HTMLWriter struct {
	baseWriter

	form  FormState
	setup Setup
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, form FormState, setup Setup) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
		form:       form,
		setup:      setup,
	}
}

// pageData is the template input.
type pageData struct {
	Form     FormState
	Setup    Setup
	Run      *model.Run
	Settings []settingRow
	Status   string
}

// WriteForm outputs the page without a result panel.
func (w *HTMLWriter) WriteForm() (int, error) {
	return w.render(nil)
}

// Write outputs the page with the result panel for run.
func (w *HTMLWriter) Write(run *model.Run) (int, error) {
	return w.render(run)
}

func (w *HTMLWriter) render(run *model.Run) (int, error) {
	data := pageData{
		Form:  w.form,
		Setup: w.setup,
		Run:   run,
	}
	if run != nil {
		data.Settings = settingRows(run)
		data.Status = statusText(run)
	}
	cw := &countingWriter{w: w.output}
	err := pageTemplate.Execute(cw, data)
	return cw.n, err
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
