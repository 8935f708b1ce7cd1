package format

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"rusttypes/internal/types"
)

// ChildRow is one line of a children table.
type ChildRow struct {
	Index  int
	Name   string
	Type   string
	Offset uint64
	Size   uint64
	Deref  bool
}

// ChildRows lists the children of a value of type id.
func ChildRows(r *types.Registry, id types.TypeID, opts types.ChildOptions) []ChildRow {
	n := r.NumChildren(id)
	rows := make([]ChildRow, 0, n)
	for i := range n {
		c, ok := r.ChildAt(id, i, opts)
		if !ok {
			continue
		}
		rows = append(rows, ChildRow{
			Index:  i,
			Name:   c.Name,
			Type:   r.Name(c.Type),
			Offset: c.ByteOffset,
			Size:   c.ByteSize,
			Deref:  c.IsDerefOfParent,
		})
	}
	return rows
}

// ChildTable renders the children of id as aligned columns. Widths are
// measured in terminal cells so wide identifiers line up.
func ChildTable(r *types.Registry, id types.TypeID, opts types.ChildOptions) string {
	rows := ChildRows(r, id, opts)
	header := []string{"#", "name", "type", "offset", "size"}
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, header)
	for _, row := range rows {
		name := row.Name
		if row.Deref && name == "" {
			name = "*"
		}
		cells = append(cells, []string{
			strconv.Itoa(row.Index),
			name,
			row.Type,
			strconv.FormatUint(row.Offset, 10),
			strconv.FormatUint(row.Size, 10),
		})
	}
	return alignColumns(cells)
}

func alignColumns(cells [][]string) string {
	widths := make([]int, len(cells[0]))
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	var b strings.Builder
	for _, row := range cells {
		for i, c := range row {
			if i == len(row)-1 {
				b.WriteString(c)
				continue
			}
			b.WriteString(runewidth.FillRight(c, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
