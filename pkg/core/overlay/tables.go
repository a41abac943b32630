package overlay

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

// Tab names of a spreadsheet overlay
const (
	ManagerTab  = "manager"
	CategoryTab = "category"
	LevelTab    = "level"
)

// Column headers of a spreadsheet overlay. Manager preference columns are every
// header starting with model.CategoryKeyPrefix.
const (
	ColMemberID = "member_id"
	ColName     = "name"
	ColContact  = "contact"
	ColScore    = "score"
	ColMaxLeads = "max_leads"
	ColID       = "id"
	ColCost     = "cost"
	ColLevel    = "level"
	ColValue    = "value"
)

// Tables is an overlay in tabular form, one header row followed by data rows per tab
type Tables struct {
	Managers   [][]string
	Categories [][]string
	Levels     [][]string
}

// FromTables parses and validates a tabular overlay. Blank rows are skipped.
func FromTables(source string, t Tables) (*Overlay, error) {
	o, err := parseTables(t)
	if err != nil {
		return nil, &MalformedInputError{Source: source, Err: err}
	}
	if err := Validate(o); err != nil {
		return nil, &MalformedInputError{Source: source, Err: err}
	}
	return o, nil
}

func parseTables(t Tables) (*Overlay, error) {
	o := &Overlay{}

	header, rows, err := splitHeader(ManagerTab, t.Managers)
	if err != nil {
		return nil, err
	}
	for n, row := range rows {
		mc := ManagerConfig{
			MemberID:    cell(row, header, ColMemberID),
			Name:        cell(row, header, ColName),
			Contact:     cell(row, header, ColContact),
			Preferences: map[string]float64{},
		}
		if mc.Score, err = parseFloat(cell(row, header, ColScore)); err != nil {
			return nil, fmt.Errorf("%s row %d: invalid %s: %w", ManagerTab, n+2, ColScore, err)
		}
		maxLeads, err := parseFloat(cell(row, header, ColMaxLeads))
		if err != nil || maxLeads != float64(int(maxLeads)) {
			return nil, fmt.Errorf("%s row %d: invalid %s %q", ManagerTab, n+2, ColMaxLeads, cell(row, header, ColMaxLeads))
		}
		mc.MaxLeads = int(maxLeads)

		for col, idx := range header {
			if !strings.HasPrefix(col, model.CategoryKeyPrefix) {
				continue
			}
			weight, err := parseFloat(at(row, idx))
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid %s: %w", ManagerTab, n+2, col, err)
			}
			mc.Preferences[col] = weight
		}
		o.Managers = append(o.Managers, mc)
	}

	header, rows, err = splitHeader(CategoryTab, t.Categories)
	if err != nil {
		return nil, err
	}
	for n, row := range rows {
		cost, err := parseFloat(cell(row, header, ColCost))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid %s: %w", CategoryTab, n+2, ColCost, err)
		}
		o.Categories = append(o.Categories, CategoryConfig{
			ID:   cell(row, header, ColID),
			Name: cell(row, header, ColName),
			Cost: cost,
		})
	}

	header, rows, err = splitHeader(LevelTab, t.Levels)
	if err != nil {
		return nil, err
	}
	for n, row := range rows {
		value, err := parseFloat(cell(row, header, ColValue))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid %s: %w", LevelTab, n+2, ColValue, err)
		}
		o.Levels = append(o.Levels, LevelConfig{
			Level: cell(row, header, ColLevel),
			Value: value,
		})
	}

	return o, nil
}

// ToTables renders the overlay in tabular form. Preference columns are
// category.unknown first, then the remaining keys sorted.
func ToTables(o *Overlay) Tables {
	keySet := map[string]bool{}
	for _, m := range o.Managers {
		for key := range m.Preferences {
			if key != model.UnknownCategoryKey {
				keySet[key] = true
			}
		}
	}
	prefKeys := make([]string, 0, len(keySet))
	for key := range keySet {
		prefKeys = append(prefKeys, key)
	}
	sort.Strings(prefKeys)
	prefKeys = append([]string{model.UnknownCategoryKey}, prefKeys...)

	t := Tables{}

	header := []string{ColMemberID, ColName, ColContact, ColScore, ColMaxLeads}
	t.Managers = append(t.Managers, append(header, prefKeys...))
	for _, m := range o.Managers {
		row := []string{m.MemberID, m.Name, m.Contact, formatFloat(m.Score), strconv.Itoa(m.MaxLeads)}
		for _, key := range prefKeys {
			row = append(row, formatFloat(m.Preferences[key]))
		}
		t.Managers = append(t.Managers, row)
	}

	t.Categories = append(t.Categories, []string{ColID, ColName, ColCost})
	for _, c := range o.Categories {
		t.Categories = append(t.Categories, []string{c.ID, c.Name, formatFloat(c.Cost)})
	}

	t.Levels = append(t.Levels, []string{ColLevel, ColValue})
	for _, l := range o.Levels {
		t.Levels = append(t.Levels, []string{l.Level, formatFloat(l.Value)})
	}

	return t
}

// splitHeader returns the header index (lowercased, trimmed) and non-blank data rows
func splitHeader(tab string, table [][]string) (map[string]int, [][]string, error) {
	if len(table) == 0 {
		return nil, nil, fmt.Errorf("%s tab is empty", tab)
	}

	header := make(map[string]int, len(table[0]))
	for i, col := range table[0] {
		name := strings.TrimSpace(col)
		if !strings.HasPrefix(name, model.CategoryKeyPrefix) {
			name = strings.ToLower(name)
		}
		if name != "" {
			header[name] = i
		}
	}

	var rows [][]string
	for _, row := range table[1:] {
		if !blank(row) {
			rows = append(rows, row)
		}
	}
	return header, rows, nil
}

func cell(row []string, header map[string]int, col string) string {
	idx, ok := header[col]
	if !ok {
		return ""
	}
	return at(row, idx)
}

func at(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseFloat treats an empty cell as 0, as a spreadsheet does
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
