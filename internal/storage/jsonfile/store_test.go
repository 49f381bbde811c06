package jsonfile_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/storage/jsonfile"
)

type record struct {
	ID    string  `json:"id"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

type stubRecorder struct {
	mu         sync.Mutex
	loads      map[string]int
	saves      map[string]int
	recoveries map[string]int
}

func newStubRecorder() *stubRecorder {
	return &stubRecorder{loads: map[string]int{}, saves: map[string]int{}, recoveries: map[string]int{}}
}

func (r *stubRecorder) RecordLoad(store string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads[store]++
}

func (r *stubRecorder) RecordSave(store string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves[store]++
}

func (r *stubRecorder) RecordRecovery(store, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recoveries[store+"/"+reason]++
}

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger.WithField("component", "test")
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.txt")
	store := jsonfile.New[record](path, jsonfile.WithLogger(quietLogger()))

	want := []record{{ID: "a", Qty: 1, Price: 1.5}, {ID: "b", Qty: 0, Price: 0}}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestStore_SaveUsesTwoSpaceIndent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.txt")
	store := jsonfile.New[record](path, jsonfile.WithLogger(quietLogger()))

	require.NoError(t, store.Save([]record{{ID: "a", Qty: 2, Price: 3}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[\n  {\n    \"id\": \"a\",\n    \"qty\": 2,\n    \"price\": 3\n  }\n]", string(data))
}

func TestStore_SaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.txt")
	store := jsonfile.New[record](path, jsonfile.WithLogger(quietLogger()))

	require.NoError(t, store.Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}

func TestStore_LoadMissingCreatesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.txt")
	recorder := newStubRecorder()
	var recoveries []jsonfile.Recovery
	store := jsonfile.New[record](path,
		jsonfile.WithLogger(quietLogger()),
		jsonfile.WithMetrics(recorder),
		jsonfile.WithRecoveryHandler(func(r jsonfile.Recovery) { recoveries = append(recoveries, r) }),
	)

	got, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, got)
	require.NotNil(t, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))

	require.Len(t, recoveries, 1)
	require.Equal(t, jsonfile.RecoveryMissing, recoveries[0].Reason)
	require.Equal(t, "products.txt", recoveries[0].Store)
	require.Equal(t, 1, recorder.recoveries["products.txt/missing"])

	_, err = os.Stat(filepath.Join(dir, jsonfile.DefaultBackupName))
	require.True(t, os.IsNotExist(err), "missing file must not produce a backup")
}

func TestStore_LoadCorruptBacksUpAndResets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.txt")
	original := []byte("{this is not json\n\x00 at all")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	var recoveries []jsonfile.Recovery
	store := jsonfile.New[record](path,
		jsonfile.WithLogger(quietLogger()),
		jsonfile.WithRecoveryHandler(func(r jsonfile.Recovery) { recoveries = append(recoveries, r) }),
	)

	got, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, got)

	backup, err := os.ReadFile(filepath.Join(dir, jsonfile.DefaultBackupName))
	require.NoError(t, err)
	require.Equal(t, original, backup)

	reset, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[]", string(reset))

	require.Len(t, recoveries, 1)
	require.Equal(t, jsonfile.RecoveryCorrupt, recoveries[0].Reason)
	require.Error(t, recoveries[0].Err)
	require.Equal(t, filepath.Join(dir, jsonfile.DefaultBackupName), recoveries[0].BackupPath)
}

func TestStore_LoadWrongShapeIsCorrupt(t *testing.T) {
	cases := map[string]string{
		"object":        `{"id": "a"}`,
		"scalar array":  `[1, 2, 3]`,
		"trailing junk": `[] []`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "records.txt")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			store := jsonfile.New[record](path, jsonfile.WithLogger(quietLogger()))
			got, err := store.Load()
			require.NoError(t, err)
			require.Empty(t, got)

			backup, err := os.ReadFile(filepath.Join(dir, jsonfile.DefaultBackupName))
			require.NoError(t, err)
			require.Equal(t, content, string(backup))
		})
	}
}

func TestStore_BackupIsOverwritten(t *testing.T) {
	dir := t.TempDir()
	backupPath := filepath.Join(dir, "backup.txt")
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(first, []byte("first broken"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("second"), 0o644))

	for _, path := range []string{first, second} {
		store := jsonfile.New[record](path, jsonfile.WithLogger(quietLogger()), jsonfile.WithBackupPath(backupPath))
		_, err := store.Load()
		require.NoError(t, err)
	}

	backup, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	require.Equal(t, "second", string(backup))
}

func TestStore_LoadEmptyFileIsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	recovered := false
	store := jsonfile.New[record](path,
		jsonfile.WithLogger(quietLogger()),
		jsonfile.WithRecoveryHandler(func(jsonfile.Recovery) { recovered = true }),
	)

	got, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, got)
	require.False(t, recovered)
}

func TestStore_LoadNullIsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.txt")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

	store := jsonfile.New[record](path, jsonfile.WithLogger(quietLogger()))
	got, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.txt")
	recorder := newStubRecorder()
	store := jsonfile.New[record](path, jsonfile.WithLogger(quietLogger()), jsonfile.WithMetrics(recorder))

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(record{ID: id}))
	}

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, []record{{ID: "a"}, {ID: "b"}, {ID: "c"}}, got)
	require.Equal(t, 3, recorder.saves["records.txt"])
	require.Equal(t, 4, recorder.loads["records.txt"])
}

func TestStore_ProductRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	store := jsonfile.New[domain.Product](path, jsonfile.WithLogger(quietLogger()))

	product := domain.Product{ID: "P001", Name: "Bolt", Description: "steel bolt", Price: domain.MoneyFromFloat(1.5), Stock: 100}
	require.NoError(t, store.Append(product))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"Product ID": "P001"`)
	require.Contains(t, string(data), `"Price": 1.50`)

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "P001", got[0].ID)
	require.Equal(t, "1.50", got[0].Price.String())
	require.Equal(t, 100, got[0].Stock)
}

func TestStore_LoadLegacyFloatPrice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	legacy := `[
  {
    "Product ID": "P001",
    "Name": "Bolt",
    "Description": "steel bolt",
    "Price": 1.5,
    "Stock": 100
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	store := jsonfile.New[domain.Product](path, jsonfile.WithLogger(quietLogger()))
	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "1.50", got[0].Price.String())
}

func TestStore_InspectDoesNotModify(t *testing.T) {
	dir := t.TempDir()

	missing := jsonfile.New[record](filepath.Join(dir, "missing.txt"), jsonfile.WithLogger(quietLogger()))
	_, err := missing.Inspect()
	require.ErrorIs(t, err, fs.ErrNotExist)
	_, statErr := os.Stat(missing.Path())
	require.ErrorIs(t, statErr, fs.ErrNotExist)

	corruptPath := filepath.Join(dir, "corrupt.txt")
	require.NoError(t, os.WriteFile(corruptPath, []byte("{not json"), 0o644))
	corrupt := jsonfile.New[record](corruptPath, jsonfile.WithLogger(quietLogger()))
	_, err = corrupt.Inspect()
	require.ErrorIs(t, err, jsonfile.ErrCorrupt)
	data, err := os.ReadFile(corruptPath)
	require.NoError(t, err)
	require.Equal(t, "{not json", string(data))

	ok := jsonfile.New[record](filepath.Join(dir, "ok.txt"), jsonfile.WithLogger(quietLogger()))
	require.NoError(t, ok.Save([]record{{ID: "a"}, {ID: "b"}}))
	n, err := ok.Inspect()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
