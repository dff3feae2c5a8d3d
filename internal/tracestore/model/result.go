package model

// Column describes one column of a query result table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is one tabular result returned by the trace store.
type Table struct {
	Name    string          `json:"name"`
	Columns []Column        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// QueryResult is the wire shape of a trace store query response.
type QueryResult struct {
	Tables []Table `json:"tables"`
}

// PrimaryTable returns the first table of the result, or nil when the
// result contains no tables.
func (qr *QueryResult) PrimaryTable() *Table {
	if qr == nil || len(qr.Tables) == 0 {
		return nil
	}
	return &qr.Tables[0]
}

// ColumnIndex returns the index of the named column, or -1 when the
// table has no such column.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}
