package proximity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jedib0t/go-pretty/v6/table"
)

func formatVec3(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X(), v.Y(), v.Z())
}

// String prints the result on one line.
func (r Result) String() string {
	return fmt.Sprintf("%s depth=%.4f normal=%s a=%s b=%s deep=%t",
		r.Status, r.Depth, formatVec3(r.Normal), formatVec3(r.ContactA), formatVec3(r.ContactB), r.Deep)
}

// RenderContacts prints a table of batch results, one row per contact.
func RenderContacts(contacts []Contact) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Pair", "Status", "Depth", "Normal", "Contact A", "Contact B", "Path"})
	for i, c := range contacts {
		path := "margin"
		if c.Result.Deep {
			path = "epa"
		}
		t.AppendRow(table.Row{
			i + 1,
			c.Pair.ID,
			c.Result.Status.String(),
			fmt.Sprintf("%.4f", c.Result.Depth),
			formatVec3(c.Result.Normal),
			formatVec3(c.Result.ContactA),
			formatVec3(c.Result.ContactB),
			path,
		})
	}
	return t.Render()
}

// RenderResults prints the results of Query next to the pairs they belong to.
func RenderResults(pairs []Pair, results []Result) string {
	contacts := make([]Contact, 0, len(results))
	for i, result := range results {
		if i >= len(pairs) {
			break
		}
		contacts = append(contacts, Contact{Pair: pairs[i], Result: result})
	}
	return RenderContacts(contacts)
}
