package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/ditagen/internal/doctree"
	"github.com/xuri/excelize/v2"
)

func TestXLSXParser_SheetsBecomeTables(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "name")
	f.SetCellValue("Sheet1", "B1", "size")
	f.SetCellValue("Sheet1", "A2", "alpha")
	f.SetCellValue("Sheet1", "B2", 1)
	if _, err := f.NewSheet("Empty"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	tree, err := (&XLSXParser{}).Parse(buf, "sizes.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "sizes" {
		t.Errorf("expected title %q, got %q", "sizes", tree.Title)
	}
	if len(tree.Blocks) != 2 {
		t.Fatalf("expected heading and table for the one non-empty sheet, got %d blocks", len(tree.Blocks))
	}
	if h := tree.Blocks[0]; h.Kind != doctree.KindHeading || h.TextContent() != "Sheet1" {
		t.Errorf("expected heading %q, got %s %q", "Sheet1", h.Kind, h.TextContent())
	}
	table := tree.Blocks[1]
	if table.Kind != doctree.KindTable || len(table.Children) != 2 {
		t.Fatalf("expected a table with head and body")
	}
	if got := table.Children[1].Children[0].Children[0].TextContent(); got != "alpha" {
		t.Errorf("expected body cell %q, got %q", "alpha", got)
	}
}

func TestXLSXParser_Invalid(t *testing.T) {
	if _, err := (&XLSXParser{}).Parse(strings.NewReader("not a workbook"), "bad.xlsx"); err == nil {
		t.Error("expected error for invalid workbook")
	}
}
