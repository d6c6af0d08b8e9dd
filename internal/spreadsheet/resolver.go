package spreadsheet

import (
	"errors"
	"fmt"
	"strings"
)

// Canonical column names for movement (update) files.
const (
	ColItem       = "item"
	ColDesc       = "desc_item"
	ColLocation   = "localizacion"
	ColCategory   = "categoria"
	ColDate       = "fecha"
	ColDocument   = "documento"
	ColEntries    = "entradas"
	ColExits      = "salidas"
	ColUnitCost   = "unitario"
	ColTotal      = "total"
	ColQuantity   = "cantidad"
	ColCostCenter = "cost_center"
	ColLot        = "lote"
)

// Canonical column names for base snapshot files, in sheet order (A:J).
const (
	ColCutoffDate   = "fecha_corte"
	ColMonth        = "mes"
	ColWarehouse    = "almacen"
	ColGroup        = "grupo"
	ColCode         = "codigo"
	ColDescription  = "descripcion"
	ColBaseQuantity = "cantidad"
	ColUnit         = "unidad_medida"
	ColBaseUnitCost = "costo_unitario"
	ColBaseTotal    = "valor_total"
)

// UpdateRequiredColumns must all resolve for a movement file to import.
// cost_center and lote are optional.
var UpdateRequiredColumns = []string{
	ColItem, ColDesc, ColLocation, ColCategory, ColDate, ColDocument,
	ColEntries, ColExits, ColUnitCost, ColTotal, ColQuantity,
}

// BaseColumns is the fixed A:J layout of the base snapshot file.
var BaseColumns = []string{
	ColCutoffDate, ColMonth, ColWarehouse, ColGroup, ColCode,
	ColDescription, ColBaseQuantity, ColUnit, ColBaseUnitCost, ColBaseTotal,
}

// updateColumnOrder fixes the resolution order of the movement schema so
// header binding never depends on map iteration.
var updateColumnOrder = []string{
	ColItem, ColDesc, ColLocation, ColCategory, ColDate, ColDocument,
	ColEntries, ColExits, ColUnitCost, ColTotal, ColQuantity,
	ColCostCenter, ColLot,
}

// columnSynonyms maps the many spellings that exports use onto the
// canonical movement-file schema. Columns already canonical are kept as-is.
var columnSynonyms = map[string][]string{
	ColItem:       {"item", "codigo", "code", "producto", "cod", "código"},
	ColDesc:       {"desc_item", "descripcion", "description", "desc", "producto_desc", "descripción"},
	ColLocation:   {"localizacion", "local", "almacen", "warehouse", "location", "localización"},
	ColCategory:   {"categoria", "category", "grupo", "group", "tipo", "categoría"},
	ColDate:       {"fecha", "date", "fecha_mov", "fecha_documento", "fecha_registro"},
	ColDocument:   {"documento", "doc", "document", "numero_documento", "número_documento"},
	ColEntries:    {"entradas", "entrada", "in", "input", "ingreso"},
	ColExits:      {"salidas", "salida", "out", "output", "egreso"},
	ColUnitCost:   {"unitario", "unit_cost", "costo_unitario", "precio_unitario", "unit", "costo_unit"},
	ColTotal:      {"total", "total_cost", "valor_total", "monto"},
	ColQuantity:   {"cantidad", "quantity", "qty", "cant", "amount"},
	ColCostCenter: {"cost_center", "centro_costo", "cc", "costcenter"},
	ColLot:        {"lote", "lot", "batch"},
}

// positionalColumns are the hard-coded sheet positions used as the final
// fallback when no header row matches the synonym table.
var positionalColumns = []int{0, 2, 3, 4, 13, 14, 17, 18, 19, 20, 21, 22}

// positionalNames are the canonical names ascribed to positionalColumns.
var positionalNames = []string{
	ColItem, ColDesc, ColLocation, ColCategory, ColDate, ColDocument,
	ColEntries, ColExits, ColUnitCost, ColTotal, ColQuantity, ColCostCenter,
}

// synonymHeaderRow is the zero-based header row the flexible strategy tries
// first; update exports conventionally carry three banner rows above it.
const synonymHeaderRow = 3

// fallbackHeaderRows are tried in order by the positional strategy.
var fallbackHeaderRows = []int{0, 1, 2, 3, 4}

// ErrUnreadable marks a file no resolution strategy could read. The
// coordinator treats it as fatal to the whole upload request.
var ErrUnreadable = errors.New("file could not be read with any known layout")

// UnreadableFileError carries the failing file's name and the per-strategy
// reasons, for the descriptive per-file error the API surfaces.
type UnreadableFileError struct {
	FileName string
	Attempts []string
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("file %q could not be read with any known layout", e.FileName)
}

func (e *UnreadableFileError) Unwrap() error { return ErrUnreadable }

// ResolveUpdateTable maps an arbitrary movement file onto the canonical
// update schema. Strategies run in fixed priority order and the first that
// yields every required column wins:
//
//  1. synonym-mapped headers at row 4 (each engine);
//  2. header rows 1-5 combined with each engine, columns ascribed by the
//     hard-coded positions;
//  3. HTML table extraction with synonym-mapped headers, when content
//     sniffing says the "spreadsheet" is really HTML.
func ResolveUpdateTable(fileName string, content []byte) (*Table, error) {
	var attempts []string

	grids := readGrids(content, &attempts)

	for _, g := range grids {
		if t, err := resolveBySynonyms(g.grid, synonymHeaderRow); err == nil {
			return t, nil
		} else {
			attempts = append(attempts, fmt.Sprintf("%s header=%d: %v", g.name, synonymHeaderRow+1, err))
		}
	}

	for _, headerRow := range fallbackHeaderRows {
		for _, g := range grids {
			if t, err := resolveByPosition(g.grid, headerRow); err == nil {
				return t, nil
			} else {
				attempts = append(attempts, fmt.Sprintf("%s positional header=%d: %v", g.name, headerRow+1, err))
			}
		}
	}

	if looksLikeHTML(content) {
		if grid, err := readHTMLTable(content); err != nil {
			attempts = append(attempts, fmt.Sprintf("html: %v", err))
		} else {
			for _, headerRow := range fallbackHeaderRows {
				if t, err := resolveBySynonyms(grid, headerRow); err == nil {
					return t, nil
				} else {
					attempts = append(attempts, fmt.Sprintf("html header=%d: %v", headerRow+1, err))
				}
			}
		}
	}

	return nil, &UnreadableFileError{FileName: fileName, Attempts: attempts}
}

// ResolveBaseTable reads a base snapshot file: headers on row 1, columns
// A:J ascribed positionally to the canonical base schema.
func ResolveBaseTable(fileName string, content []byte) (*Table, error) {
	var attempts []string
	grids := readGrids(content, &attempts)

	for _, g := range grids {
		if len(g.grid) < 2 {
			attempts = append(attempts, fmt.Sprintf("%s: no data rows below header", g.name))
			continue
		}
		rows := make([][]string, 0, len(g.grid)-1)
		for _, raw := range g.grid[1:] {
			rows = append(rows, sliceRow(raw, len(BaseColumns)))
		}
		return NewTable(BaseColumns, rows), nil
	}

	if looksLikeHTML(content) {
		if grid, err := readHTMLTable(content); err == nil && len(grid) >= 2 {
			rows := make([][]string, 0, len(grid)-1)
			for _, raw := range grid[1:] {
				rows = append(rows, sliceRow(raw, len(BaseColumns)))
			}
			return NewTable(BaseColumns, rows), nil
		}
	}

	return nil, &UnreadableFileError{FileName: fileName, Attempts: attempts}
}

type namedGrid struct {
	name string
	grid [][]string
}

// readGrids runs every engine over the content, keeping the ones that
// produced a grid and recording the ones that failed.
func readGrids(content []byte, attempts *[]string) []namedGrid {
	var grids []namedGrid
	for _, e := range engines {
		grid, err := e.read(content)
		if err != nil {
			*attempts = append(*attempts, fmt.Sprintf("%s: %v", e.name, err))
			continue
		}
		grids = append(grids, namedGrid{name: e.name, grid: grid})
	}
	return grids
}

// resolveBySynonyms lower-cases and trims the header row, renames synonym
// spellings to canonical names and checks the required set.
func resolveBySynonyms(grid [][]string, headerRow int) (*Table, error) {
	if len(grid) <= headerRow+1 {
		return nil, fmt.Errorf("no data rows below header row %d", headerRow+1)
	}

	headers := make([]string, len(grid[headerRow]))
	for i, h := range grid[headerRow] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	canonical := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if _, ok := columnSynonyms[h]; ok {
			canonical[h] = struct{}{}
		}
	}
	// Bind one target at a time in schema order: when a sheet carries two
	// spellings of the same column, the earlier synonym wins, not whichever
	// cell a map walk happened to visit first.
	for _, target := range updateColumnOrder {
		if _, taken := canonical[target]; taken {
			continue
		}
	synonyms:
		for _, syn := range columnSynonyms[target] {
			for i, h := range headers {
				if h == syn {
					headers[i] = target
					canonical[target] = struct{}{}
					break synonyms
				}
			}
		}
	}

	table := NewTable(headers, grid[headerRow+1:])
	if missing := table.Missing(UpdateRequiredColumns); len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return table, nil
}

// resolveByPosition ascribes canonical names to the hard-coded column
// positions. The sheet must be wide enough to actually hold them.
func resolveByPosition(grid [][]string, headerRow int) (*Table, error) {
	if len(grid) <= headerRow+1 {
		return nil, fmt.Errorf("no data rows below header row %d", headerRow+1)
	}
	maxPos := positionalColumns[len(positionalColumns)-1]
	wide := 0
	for _, row := range grid {
		if len(row) > wide {
			wide = len(row)
		}
	}
	if wide <= maxPos {
		return nil, fmt.Errorf("sheet is %d columns wide, need %d", wide, maxPos+1)
	}

	rows := make([][]string, 0, len(grid)-headerRow-1)
	for _, raw := range grid[headerRow+1:] {
		row := make([]string, len(positionalColumns))
		for i, pos := range positionalColumns {
			if pos < len(raw) {
				row[i] = raw[pos]
			}
		}
		rows = append(rows, row)
	}
	return NewTable(positionalNames, rows), nil
}

func sliceRow(raw []string, width int) []string {
	row := make([]string, width)
	for i := 0; i < width && i < len(raw); i++ {
		row[i] = raw[i]
	}
	return row
}
