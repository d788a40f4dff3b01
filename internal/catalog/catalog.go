package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"rentscan/lib/textutil"
)

// Entry is a vendor or category row: an upstream code and its display name.
type Entry struct {
	Code string
	Name string
}

// VehicleEntry binds a normalized alias key to a canonical vehicle.
// AuxCode1 and AuxCode2 are passthrough columns that end up in the last two
// fields of every record resolved to this vehicle.
type VehicleEntry struct {
	Key           string
	Alias         string
	CanonicalCode string
	CanonicalName string
	AuxCode1      string
	AuxCode2      string
}

// Duplicate flags an alias key that appeared on more than one row with a
// different canonical name. Kept is the entry the catalog resolves to.
type Duplicate struct {
	Key       string
	Kept      VehicleEntry
	Discarded []VehicleEntry
}

// Catalog holds the three lookup tables. It is immutable after Load and safe
// for concurrent readers.
type Catalog struct {
	vehicles   []VehicleEntry
	vehicleIdx map[string]int
	vendors    map[string]Entry
	categories map[string]Entry
	duplicates []Duplicate
}

// Vehicles returns one entry per unique alias key, in the order the key was
// first seen. The returned slice must not be modified.
func (c *Catalog) Vehicles() []VehicleEntry {
	return c.vehicles
}

// Vehicle looks up an already normalized alias key.
func (c *Catalog) Vehicle(key string) (VehicleEntry, bool) {
	i, ok := c.vehicleIdx[key]
	if !ok {
		return VehicleEntry{}, false
	}
	return c.vehicles[i], true
}

func (c *Catalog) Vendor(code string) (Entry, bool) {
	e, ok := c.vendors[code]
	return e, ok
}

func (c *Catalog) Category(code string) (Entry, bool) {
	e, ok := c.categories[code]
	return e, ok
}

func (c *Catalog) Duplicates() []Duplicate {
	return c.duplicates
}

type Sizes struct {
	Vehicles   int
	Vendors    int
	Categories int
}

func (c *Catalog) Sizes() Sizes {
	return Sizes{
		Vehicles:   len(c.vehicles),
		Vendors:    len(c.vendors),
		Categories: len(c.categories),
	}
}

// Readers holds the raw reference tables. A zero Delimiter means the
// delimiter is detected from each header line.
type Readers struct {
	Vehicles   io.Reader
	Vendors    io.Reader
	Categories io.Reader
	Delimiter  rune
}

// Paths locates the reference tables on disk.
type Paths struct {
	Vehicles   string `json:"vehicles"`
	Vendors    string `json:"vendors"`
	Categories string `json:"categories"`
	// Delimiter is ";" or ","; empty means detect.
	Delimiter string `json:"delimiter"`
}

const (
	tableVehicles   = "vehicles"
	tableVendors    = "vendors"
	tableCategories = "categories"
)

// LoadFiles opens and loads the three tables. Any missing or unreadable file
// returns a *ConfigurationError.
func LoadFiles(paths Paths) (*Catalog, error) {
	var delimiter rune
	switch paths.Delimiter {
	case "":
	case ";", ",", "\t":
		delimiter = rune(paths.Delimiter[0])
	default:
		return nil, &ConfigurationError{
			Table: tableVehicles,
			Err:   fmt.Errorf("unsupported delimiter %q", paths.Delimiter),
		}
	}

	files := make([]*os.File, 0, 3)
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	open := func(table, path string) (*os.File, error) {
		if path == "" {
			return nil, &ConfigurationError{Table: table, Err: errors.New("no path configured")}
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, &ConfigurationError{Table: table, Path: path, Err: err}
		}
		files = append(files, f)
		return f, nil
	}

	vehicles, err := open(tableVehicles, paths.Vehicles)
	if err != nil {
		return nil, err
	}
	vendors, err := open(tableVendors, paths.Vendors)
	if err != nil {
		return nil, err
	}
	categories, err := open(tableCategories, paths.Categories)
	if err != nil {
		return nil, err
	}

	cat, err := Load(Readers{
		Vehicles:   vehicles,
		Vendors:    vendors,
		Categories: categories,
		Delimiter:  delimiter,
	})
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			switch cfgErr.Table {
			case tableVehicles:
				cfgErr.Path = paths.Vehicles
			case tableVendors:
				cfgErr.Path = paths.Vendors
			case tableCategories:
				cfgErr.Path = paths.Categories
			}
		}
		return nil, err
	}
	return cat, nil
}

// Load builds a catalog from the three tables.
func Load(in Readers) (*Catalog, error) {
	if in.Vehicles == nil || in.Vendors == nil || in.Categories == nil {
		return nil, &ConfigurationError{Table: tableVehicles, Err: errors.New("all three tables are required")}
	}

	cat := &Catalog{}

	vehicles, err := readTable(in.Vehicles, in.Delimiter)
	if err != nil {
		return nil, &ConfigurationError{Table: tableVehicles, Err: err}
	}
	err = cat.loadVehicles(vehicles)
	if err != nil {
		return nil, &ConfigurationError{Table: tableVehicles, Err: err}
	}

	vendors, err := readTable(in.Vendors, in.Delimiter)
	if err != nil {
		return nil, &ConfigurationError{Table: tableVendors, Err: err}
	}
	cat.vendors, err = loadCodes(vendors, "nome_locadora")
	if err != nil {
		return nil, &ConfigurationError{Table: tableVendors, Err: err}
	}

	categories, err := readTable(in.Categories, in.Delimiter)
	if err != nil {
		return nil, &ConfigurationError{Table: tableCategories, Err: err}
	}
	cat.categories, err = loadCodes(categories, "nome_categoria")
	if err != nil {
		return nil, &ConfigurationError{Table: tableCategories, Err: err}
	}

	return cat, nil
}

func (c *Catalog) loadVehicles(t table) error {
	aliasCol := t.column("alias", "modelo_consulta")
	if aliasCol < 0 {
		return errors.New("missing alias column (alias or modelo_consulta)")
	}
	codeCol := t.column("canonicalcode", "code", "codigo_asa")
	nameCol := t.column("canonicalname", "name")
	aux1Col := t.column("auxcode1")
	aux2Col := t.column("auxcode2", "letra", "class")

	c.vehicleIdx = make(map[string]int)
	discarded := make(map[string][]VehicleEntry)
	for _, row := range t.rows {
		alias := cell(row, aliasCol)
		key := textutil.Normalize(alias)
		if key == "" {
			continue
		}

		entry := VehicleEntry{
			Key:           key,
			Alias:         alias,
			CanonicalCode: cell(row, codeCol),
			CanonicalName: cell(row, nameCol),
			AuxCode1:      cell(row, aux1Col),
			AuxCode2:      cell(row, aux2Col),
		}
		if nameCol < 0 || entry.CanonicalName == "" {
			entry.CanonicalName = alias
		}
		if aux1Col < 0 {
			entry.AuxCode1 = entry.CanonicalCode
		}

		i, seen := c.vehicleIdx[key]
		if !seen {
			c.vehicleIdx[key] = len(c.vehicles)
			c.vehicles = append(c.vehicles, entry)
			continue
		}
		// the last row for a key wins, its position stays where it was first seen
		previous := c.vehicles[i]
		if previous.CanonicalName != entry.CanonicalName {
			discarded[key] = append(discarded[key], previous)
		}
		c.vehicles[i] = entry
	}

	for _, v := range c.vehicles {
		if len(discarded[v.Key]) == 0 {
			continue
		}
		c.duplicates = append(c.duplicates, Duplicate{
			Key:       v.Key,
			Kept:      v,
			Discarded: discarded[v.Key],
		})
	}
	return nil
}

func loadCodes(t table, localizedName string) (map[string]Entry, error) {
	codeCol := t.column("code", "codigo")
	if codeCol < 0 {
		return nil, errors.New("missing code column (code or codigo)")
	}
	nameCol := t.column("name", "nome", localizedName)
	if nameCol < 0 {
		return nil, fmt.Errorf("missing name column (name, nome or %s)", localizedName)
	}

	out := make(map[string]Entry, len(t.rows))
	for _, row := range t.rows {
		code := cell(row, codeCol)
		if code == "" {
			continue
		}
		out[code] = Entry{Code: code, Name: cell(row, nameCol)}
	}
	return out, nil
}
