package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"ctwrap/internal/sim"
)

// csvHeader is the fixed header of a CSV container. Results are stored in
// long format: one row per attribute and one row per sample. The provenance
// record is one row with kind "metadata" and a JSON value.
var csvHeader = []string{"group", "kind", "key", "index", "value"}

const (
	csvKindAttr = "attr"
	csvKindData = "data"
	csvKindMeta = "metadata"
)

type csvArtifact struct {
	path    string
	records [][]string
}

func openCSV(path string) (Artifact, error) {
	a := &csvArtifact{path: path}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if len(rows) > 0 {
		a.records = rows[1:]
	}
	return a, nil
}

func (a *csvArtifact) flush() error {
	f, err := os.Create(a.path)
	if err != nil {
		return fmt.Errorf("write artifact %s: %w", a.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	if err := w.WriteAll(a.records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (a *csvArtifact) Groups() ([]string, error) {
	seen := map[string]bool{}
	for _, rec := range a.records {
		if len(rec) >= 2 && rec[1] != csvKindMeta && rec[0] != "" {
			seen[rec[0]] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (a *csvArtifact) hasGroup(name string) bool {
	for _, rec := range a.records {
		if len(rec) >= 2 && rec[0] == name && rec[1] != csvKindMeta {
			return true
		}
	}
	return false
}

func (a *csvArtifact) ReadGroup(name string) (*sim.Result, error) {
	if !a.hasGroup(name) {
		return nil, fmt.Errorf("group %q not found", name)
	}
	res := &sim.Result{Attrs: map[string]any{}, Data: map[string][]float64{}}
	for _, rec := range a.records {
		if len(rec) < 5 || rec[0] != name {
			continue
		}
		switch rec[1] {
		case csvKindAttr:
			if f, err := strconv.ParseFloat(rec[4], 64); err == nil {
				res.Attrs[rec[2]] = f
			} else {
				res.Attrs[rec[2]] = rec[4]
			}
		case csvKindData:
			f, err := strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("group %q column %q: %w", name, rec[2], err)
			}
			if _, ok := res.Data[rec[2]]; !ok {
				res.Columns = append(res.Columns, rec[2])
			}
			res.Data[rec[2]] = append(res.Data[rec[2]], f)
		}
	}
	return res, nil
}

func (a *csvArtifact) WriteGroup(name string, result *sim.Result, force bool) error {
	if a.hasGroup(name) {
		if !force {
			return fmt.Errorf("%w: %q (use force to override)", ErrGroupExists, name)
		}
		a.dropGroup(name)
	}

	attrKeys := make([]string, 0, len(result.Attrs))
	for k := range result.Attrs {
		attrKeys = append(attrKeys, k)
	}
	sort.Strings(attrKeys)
	for _, k := range attrKeys {
		a.records = append(a.records, []string{name, csvKindAttr, k, "", fmt.Sprintf("%v", result.Attrs[k])})
	}
	for _, col := range result.Columns {
		for i, v := range result.Data[col] {
			a.records = append(a.records, []string{
				name, csvKindData, col, strconv.Itoa(i), strconv.FormatFloat(v, 'g', -1, 64),
			})
		}
	}
	return a.flush()
}

func (a *csvArtifact) dropGroup(name string) {
	kept := a.records[:0]
	for _, rec := range a.records {
		if len(rec) >= 2 && rec[0] == name && rec[1] != csvKindMeta {
			continue
		}
		kept = append(kept, rec)
	}
	a.records = kept
}

func (a *csvArtifact) WriteMetadata(meta any) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	kept := a.records[:0]
	for _, rec := range a.records {
		if len(rec) >= 2 && rec[1] == csvKindMeta {
			continue
		}
		kept = append(kept, rec)
	}
	a.records = append(kept, []string{"", csvKindMeta, "", "", string(payload)})
	return a.flush()
}

func (a *csvArtifact) Metadata() (json.RawMessage, error) {
	for _, rec := range a.records {
		if len(rec) >= 5 && rec[1] == csvKindMeta {
			return json.RawMessage(rec[4]), nil
		}
	}
	return nil, nil
}

func (a *csvArtifact) Close() error { return nil }
