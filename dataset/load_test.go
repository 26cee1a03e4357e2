package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/modelbench/modelbench/pkg/errors"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempFile(t, "iris.csv",
		"sepal,petal,species\n5.1,1.4,setosa\n6.2,4.5,versicolor\n4.9,,setosa\n")

	tbl, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"sepal", "petal", "species"}, tbl.ColumnNames())

	petal, err := tbl.Column("petal")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, petal.Kind)
	assert.True(t, petal.Missing[2], "empty cell should be missing")

	species, err := tbl.Column("species")
	require.NoError(t, err)
	assert.Equal(t, KindString, species.Kind)
	assert.Equal(t, "versicolor", species.Strings[1])
}

func TestLoadCSVUppercaseExtension(t *testing.T) {
	path := writeTempFile(t, "data.CSV", "a,b\n1,2\n")
	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.NumRows())
}

func TestLoadJSON(t *testing.T) {
	path := writeTempFile(t, "data.json",
		`[{"age": 31, "city": "Osaka"}, {"age": 24}, {"age": 47, "city": "Kobe"}]`)

	tbl, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	// Columns are in sorted key order.
	assert.Equal(t, []string{"age", "city"}, tbl.ColumnNames())

	city, err := tbl.Column("city")
	require.NoError(t, err)
	assert.True(t, city.Missing[1], "absent key should be missing")
}

func TestLoadExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"x", "label"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{1.5, "yes"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{2.5, "no"}))

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())

	x, err := tbl.Column("x")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, x.Kind)
	assert.InDelta(t, 1.5, x.Floats[0], 1e-12)
}

func TestLoadFeather(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "v", Type: arrow.PrimitiveTypes.Float64},
		{Name: "tag", Type: arrow.BinaryTypes.String},
	}, nil)

	bld := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer bld.Release()
	bld.Field(0).(*array.Float64Builder).AppendValues([]float64{0.5, 1.5, 2.5}, nil)
	bld.Field(1).(*array.StringBuilder).AppendValues([]string{"a", "b", "a"}, nil)
	rec := bld.NewRecord()
	defer rec.Release()

	path := filepath.Join(t.TempDir(), "data.feather")
	out, err := os.Create(path)
	require.NoError(t, err)

	w, err := ipc.NewFileWriter(out, ipc.WithSchema(schema), ipc.WithAllocator(memory.DefaultAllocator))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NumRows())

	tag, err := tbl.Column("tag")
	require.NoError(t, err)
	assert.Equal(t, KindString, tag.Kind)
	assert.Equal(t, []string{"a", "b", "a"}, tag.Strings)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "a,b\n1,2\n")

	_, err := Load(path)
	require.Error(t, err)

	var ufe *errors.UnsupportedFormatError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, ".txt", ufe.Extension)
}

func TestDropColumn(t *testing.T) {
	path := writeTempFile(t, "d.csv", "a,b,c\n1,x,2\n3,y,4\n")
	tbl, err := Load(path)
	require.NoError(t, err)

	dropped, err := tbl.DropColumn("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, dropped.ColumnNames())
	assert.Equal(t, 2, dropped.NumRows())

	_, err = tbl.DropColumn("nope")
	assert.Error(t, err)
}
