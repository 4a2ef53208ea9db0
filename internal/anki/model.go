package anki

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Stable identifiers, Anki updates the existing deck and note type on re-import as long as they do not change.
const (
	DefaultModelID   int64 = 1607392319
	DefaultDeckID    int64 = 2059400110
	DefaultModelName       = "Notion CSV Model"
	DefaultDeckName        = "Notion to Anki • Japanese N4+"
)

const DefaultCSS = `.card {
    font-family: "Helvetica", "Arial", sans-serif;
    font-size: 20px;
    text-align: center;
    color: #2c3e50;
}
.front { font-size: 45px; margin-bottom: 20px; font-weight: bold; }
.back-container {
    text-align: left;
    display: inline-block;
    width: 90%;
    margin-top: 10px;
    white-space: pre-line;
    line-height: 1.6;
}
`

const (
	latexPre = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n" +
		"\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n"
	latexPost = "\\end{document}"
)

var fieldRefPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// special template replacements that do not reference a note field
var specialFields = map[string]bool{
	"FrontSide": true,
	"Tags":      true,
	"Type":      true,
	"Deck":      true,
	"Subdeck":   true,
	"Card":      true,
	"CardFlag":  true,
}

type Field struct {
	Name string
}

// Template defines how a card is rendered. QFmt is the question side, AFmt the answer side.
type Template struct {
	Name string
	QFmt string
	AFmt string
}

// Model the note type, it defines the fields of a note and the cards generated from it.
type Model struct {
	ID        int64
	Name      string
	Fields    []Field
	Templates []Template
	CSS       string
	SortField int
}

// NewBasicModel returns the front/back note type with a single card template.
func NewBasicModel(id int64, name string) *Model {
	return &Model{
		ID:   id,
		Name: name,
		Fields: []Field{
			{Name: "Front"},
			{Name: "Back"},
		},
		Templates: []Template{
			{
				Name: "Card 1",
				QFmt: `<div class="front">{{Front}}</div>`,
				AFmt: `{{FrontSide}}<hr id="answer"><div class="back-container">{{Back}}</div>`,
			},
		},
		CSS: DefaultCSS,
	}
}

func (m *Model) validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("model id must be positive but was %d", m.ID)
	}
	if len(m.Fields) == 0 {
		return fmt.Errorf("model %s has no fields", m.Name)
	}
	if len(m.Templates) == 0 {
		return fmt.Errorf("model %s has no templates", m.Name)
	}
	if m.SortField < 0 || m.SortField >= len(m.Fields) {
		return fmt.Errorf("sort field %d of model %s is out of range", m.SortField, m.Name)
	}

	for i := range m.Templates {
		if len(m.requiredFields(i)) == 0 {
			return fmt.Errorf("template %s of model %s references no field on the question side", m.Templates[i].Name, m.Name)
		}
	}

	return nil
}

// requiredFields returns the ordinals of all fields referenced on the question side of a template.
// A card is generated as soon as one of them is not empty.
func (m *Model) requiredFields(template int) []int {
	ords := map[string]int{}
	for i, f := range m.Fields {
		ords[f.Name] = i
	}

	seen := map[int]bool{}
	var required []int
	for _, match := range fieldRefPattern.FindAllStringSubmatch(m.Templates[template].QFmt, -1) {
		ref := match[1]
		if strings.ContainsAny(ref[:1], "#^/!") {
			continue
		}
		// filters like {{text:Front}} or {{cloze:Text}}
		if i := strings.LastIndex(ref, ":"); i >= 0 {
			ref = ref[i+1:]
		}
		if specialFields[ref] {
			continue
		}

		ord, ok := ords[ref]
		if ok && !seen[ord] {
			seen[ord] = true
			required = append(required, ord)
		}
	}

	return required
}

type modelFieldJSON struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Font   string   `json:"font"`
	Media  []string `json:"media"`
	RTL    bool     `json:"rtl"`
	Size   int      `json:"size"`
	Sticky bool     `json:"sticky"`
}

type modelTemplateJSON struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	QFmt  string `json:"qfmt"`
	AFmt  string `json:"afmt"`
	BQFmt string `json:"bqfmt"`
	BAFmt string `json:"bafmt"`
	DID   *int64 `json:"did"`
}

type modelJSON struct {
	CSS       string              `json:"css"`
	DID       int64               `json:"did"`
	Flds      []modelFieldJSON    `json:"flds"`
	ID        string              `json:"id"`
	LatexPost string              `json:"latexPost"`
	LatexPre  string              `json:"latexPre"`
	LatexSVG  bool                `json:"latexsvg"`
	Mod       int64               `json:"mod"`
	Name      string              `json:"name"`
	Req       [][]any             `json:"req"`
	Sortf     int                 `json:"sortf"`
	Tags      []string            `json:"tags"`
	Tmpls     []modelTemplateJSON `json:"tmpls"`
	Type      int                 `json:"type"`
	Usn       int                 `json:"usn"`
	Vers      []int               `json:"vers"`
}

func (m *Model) toJSON(deckID int64, mod int64) modelJSON {
	flds := make([]modelFieldJSON, 0, len(m.Fields))
	for i, f := range m.Fields {
		flds = append(flds, modelFieldJSON{
			Name:  f.Name,
			Ord:   i,
			Font:  "Liberation Sans",
			Media: []string{},
			Size:  20,
		})
	}

	tmpls := make([]modelTemplateJSON, 0, len(m.Templates))
	req := make([][]any, 0, len(m.Templates))
	for i, t := range m.Templates {
		tmpls = append(tmpls, modelTemplateJSON{
			Name: t.Name,
			Ord:  i,
			QFmt: t.QFmt,
			AFmt: t.AFmt,
		})
		req = append(req, []any{i, "any", m.requiredFields(i)})
	}

	return modelJSON{
		CSS:       m.CSS,
		DID:       deckID,
		Flds:      flds,
		ID:        strconv.FormatInt(m.ID, 10),
		LatexPost: latexPost,
		LatexPre:  latexPre,
		Mod:       mod,
		Name:      m.Name,
		Req:       req,
		Sortf:     m.SortField,
		Tags:      []string{},
		Tmpls:     tmpls,
		Usn:       -1,
		Vers:      []int{},
	}
}
