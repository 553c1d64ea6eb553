package parquetio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pw "github.com/xitongsys/parquet-go/writer"
	local "github.com/xitongsys/parquet-go-source/local"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

func parquetSchemaJSON(s cf.Schema) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		// the tag grammar has no escaping
		if cs.Name == "" || strings.ContainsAny(cs.Name, ",=") {
			return "", fmt.Errorf("parquet: column name %q cannot be written", cs.Name)
		}
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case cf.KindFloat:
			tag += "DOUBLE"
		case cf.KindInt:
			tag += "INT64"
		case cf.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteAll writes a Frame to a Parquet file. Rows go to a uniquely named
// temporary file next to path which is renamed into place once the footer is
// written, so concurrent writers to one path never share a temporary file.
func WriteAll(path string, f *cf.Frame) (err error) {
	schema, err := parquetSchemaJSON(f.Schema())
	if err != nil {
		return err
	}
	reserved, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := reserved.Name()
	_ = reserved.Close()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	names := f.Schema().Names()
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(names))
		for c, name := range names {
			if v := f.Value(r, c); v != nil {
				rec[name] = v
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			_ = fw.Close()
			return err
		}
		if err := writer.Write(string(b)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet write footer: %w", err)
	}
	if err = fw.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
