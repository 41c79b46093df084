package roster

import (
	"github.com/Veraticus/lessons-ledger/internal/exceptions"
	"github.com/Veraticus/lessons-ledger/internal/tabular"
)

// ExceptionColumns names the exception table headers. Both exception tables share them.
type ExceptionColumns struct {
	Teacher       string `mapstructure:"teacher"`
	Active        string `mapstructure:"active"`
	BlackoutFrom  string `mapstructure:"blackout_from"`
	BlackoutTo    string `mapstructure:"blackout_to"`
	SystemMessage string `mapstructure:"system_message"`
}

// DefaultExceptionColumns returns the headers of the exception sheets.
func DefaultExceptionColumns() ExceptionColumns {
	return ExceptionColumns{
		Teacher:       "שם המורה",
		Active:        "תאריך פעיל",
		BlackoutFrom:  "תאריך לא פעיל מ",
		BlackoutTo:    "תאריך לא פעיל עד",
		SystemMessage: "הודעת מערכת",
	}
}

// Header returns the canonical header row of an exception sheet.
func (c ExceptionColumns) Header() []string {
	return []string{c.Teacher, c.Active, c.BlackoutFrom, c.BlackoutTo, c.SystemMessage}
}

// Exceptions decodes an exception table. Only the teacher column is required;
// unparseable dates read as absent.
func Exceptions(sheet string, rows [][]any, cols ExceptionColumns) ([]exceptions.Entry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	hm := tabular.NewHeaderMap(sheet, rows[0])
	if err := hm.Require(cols.Teacher); err != nil {
		return nil, err
	}

	out := make([]exceptions.Entry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		e := exceptions.Entry{
			Row:     i + 2,
			Teacher: hm.Text(row, cols.Teacher),
			Active:  tabular.Date(hm.Cell(row, cols.Active)),
			From:    tabular.Date(hm.Cell(row, cols.BlackoutFrom)),
			To:      tabular.Date(hm.Cell(row, cols.BlackoutTo)),
		}
		if e.Teacher == "" && e.Active.IsZero() && e.From.IsZero() && e.To.IsZero() {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
