// Package pdf genera el informe de estado de documentos de un proyecto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + proyecto   │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTADORES: requeridos / faltan / pendientes / aprobados /  │
//	│              acción necesaria                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Documento | Fecha límite | Comentario                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/audit-portal-api/internal/application/ports"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
)

var _ ports.ReportPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// MarotoPDFGenerator implementa ports.ReportPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateStatusReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateStatusReport(_ context.Context, in ports.StatusReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		// TODO: registrar una TTF con cirílico (WithCustomFonts); helvetica no dibuja los nombres en mongol.
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Document status report", true).
		WithAuthor(in.Company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(in))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(statsRow(in.Stats))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(missingRows(in.Missing)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(in ports.StatusReport) core.Row {
	companyName := in.Company.Name
	if in.Company.NameLocal != "" {
		companyName = in.Company.NameLocal
	}
	return row.New(18).Add(
		col.New(8).Add(
			text.New(companyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(in.Project.Name, props.Text{
				Size: 10, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("DOCUMENT STATUS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(in.GeneratedAt.Format("2006-01-02 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func statsRow(s entity.DocumentStats) core.Row {
	cell := func(label string, value int, c *props.Color) core.Col {
		return col.New(2).Add(
			text.New(strconv.Itoa(value), props.Text{
				Style: fontstyle.Bold, Size: 14, Align: align.Center, Color: c, Top: 1,
			}),
			text.New(label, props.Text{
				Size: 7, Align: align.Center, Color: colorGray, Top: 10,
			}),
		)
	}
	return row.New(18).Add(
		col.New(1),
		cell("Required", s.TotalRequired, colorPrimary),
		cell("Missing", s.Missing, colorAlert),
		cell("Pending", s.Pending, colorPrimary),
		cell("Approved", s.Approved, colorPrimary),
		cell("Action needed", s.ActionNeeded, colorAlert),
		col.New(1),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 1,
		}))
	}
	return row.New(8).Add(
		h("Missing document", 6),
		h("Due date", 2),
		h("Comment", 4),
	)
}

func missingRows(docs []entity.RequestedDocument) []core.Row {
	if len(docs) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("No missing documents.", props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
		))}
	}
	out := make([]core.Row, 0, len(docs))
	for _, d := range docs {
		due := "-"
		if d.DueDate != nil {
			due = d.DueDate.Format("2006-01-02")
		}
		out = append(out, row.New(7).Add(
			col.New(6).Add(text.New(d.DocumentName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(due, props.Text{Size: 8, Top: 1})),
			col.New(4).Add(text.New(d.Comment, props.Text{Size: 8, Top: 1, Color: colorGray})),
		))
	}
	return out
}
