package sheetsclient

import (
	"fmt"

	"github.com/jakechorley/lead-allocator/pkg/core/overlay"
)

// OverlayTabs names the tabs holding each overlay table
type OverlayTabs struct {
	Manager  string
	Category string
	Level    string
}

// LoadOverlay reads and validates an overlay from a spreadsheet. Read failures are
// reported as malformed input like parse failures.
func (c *Client) LoadOverlay(spreadsheetID string, tabs OverlayTabs) (*overlay.Overlay, error) {
	source := "sheet " + spreadsheetID

	managers, err := c.GetValues(spreadsheetID, tabRange(tabs.Manager))
	if err != nil {
		return nil, &overlay.MalformedInputError{Source: source, Err: fmt.Errorf("failed to read %s tab: %w", tabs.Manager, err)}
	}
	categories, err := c.GetValues(spreadsheetID, tabRange(tabs.Category))
	if err != nil {
		return nil, &overlay.MalformedInputError{Source: source, Err: fmt.Errorf("failed to read %s tab: %w", tabs.Category, err)}
	}
	levels, err := c.GetValues(spreadsheetID, tabRange(tabs.Level))
	if err != nil {
		return nil, &overlay.MalformedInputError{Source: source, Err: fmt.Errorf("failed to read %s tab: %w", tabs.Level, err)}
	}

	return overlay.FromTables(source, overlay.Tables{
		Managers:   toStrings(managers),
		Categories: toStrings(categories),
		Levels:     toStrings(levels),
	})
}

// WriteOverlay writes an overlay to the spreadsheet, creating missing tabs
func (c *Client) WriteOverlay(spreadsheetID string, tabs OverlayTabs, o *overlay.Overlay) error {
	existing, err := c.SheetTitles(spreadsheetID)
	if err != nil {
		return err
	}

	tables := overlay.ToTables(o)
	for _, tab := range []struct {
		title string
		rows  [][]string
	}{
		{tabs.Manager, tables.Managers},
		{tabs.Category, tables.Categories},
		{tabs.Level, tables.Levels},
	} {
		if err := c.ensureSheet(spreadsheetID, tab.title, existing); err != nil {
			return fmt.Errorf("failed to create %s tab: %w", tab.title, err)
		}
		if err := c.UpdateValues(spreadsheetID, tabRange(tab.title), toCells(tab.rows)); err != nil {
			return fmt.Errorf("failed to write %s tab: %w", tab.title, err)
		}
	}

	return nil
}
