package catalog

// TableDef defines a table for the in-memory provider.
type TableDef struct {
	Catalog string
	Schema  string
	Name    string
	Columns []Attribute
}

// memTable is the Table handle returned by Memory.
type memTable struct {
	def *TableDef
}

func (t *memTable) Name() string { return t.def.Name }

func (t *memTable) Path() []string {
	var path []string
	if t.def.Catalog != "" {
		path = append(path, t.def.Catalog)
	}
	if t.def.Schema != "" {
		path = append(path, t.def.Schema)
	}
	return append(path, t.def.Name)
}

// Memory is an in-memory Provider backed by a fixed table list.
// It is the provider used by tests and by YAML schema files.
type Memory struct {
	tables []*TableDef
}

// NewMemory creates an in-memory provider over the given table definitions.
func NewMemory(tables ...TableDef) *Memory {
	m := &Memory{}
	for i := range tables {
		t := tables[i]
		m.tables = append(m.tables, &t)
	}
	return m
}

// Add registers another table definition.
func (m *Memory) Add(def TableDef) {
	d := def
	m.tables = append(m.tables, &d)
}

// FindTable matches path as a suffix of each table's qualified name.
// The first matching table wins; definitions registered earlier shadow
// later ones with the same name.
func (m *Memory) FindTable(path []string) (Table, bool) {
	for _, def := range m.tables {
		handle := &memTable{def: def}
		if PathMatches(handle.Path(), path) {
			return handle, true
		}
	}
	return nil, false
}

// Tables returns every registered table definition in registration
// order.
func (m *Memory) Tables() ([]TableDef, error) {
	defs := make([]TableDef, len(m.tables))
	for i, def := range m.tables {
		defs[i] = *def
	}
	return defs, nil
}

// Attributes returns the declared columns of a table handle.
func (m *Memory) Attributes(t Table) ([]Attribute, error) {
	mt, ok := t.(*memTable)
	if !ok {
		return nil, &UnknownTableError{Name: t.Name()}
	}
	return mt.def.Columns, nil
}

// UnknownTableError reports an attribute lookup for a table handle the
// provider does not own.
type UnknownTableError struct {
	Name string
}

func (e *UnknownTableError) Error() string {
	return "catalog: unknown table " + e.Name
}
