package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"pesa/internal/core"
	applog "pesa/internal/log"
)

const filePerm = 0o644

// FileRepository keeps each user's ledger in three files inside one data
// directory: two CSV transaction files and a JSON budget object.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", core.ErrPersistence, err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) Close() error { return nil }

func (r *FileRepository) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: invalid data file %q", core.ErrPersistence, name)
	}
	return filepath.Join(r.dir, name), nil
}

// Init creates header-only transaction files and an empty budget object,
// skipping any file that already exists.
func (r *FileRepository) Init(ctx context.Context, user core.User) error {
	for _, kind := range []core.Kind{core.Expense, core.Income} {
		var buf bytes.Buffer
		if err := writeTransactions(&buf, kind, nil); err != nil {
			return err
		}
		if err := r.createIfMissing(ctx, user.Files.File(kind), buf.Bytes()); err != nil {
			return err
		}
	}
	return r.createIfMissing(ctx, user.Files.Budgets, []byte("{}"))
}

func (r *FileRepository) createIfMissing(ctx context.Context, name string, content []byte) error {
	p, err := r.path(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", core.ErrPersistence, name, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", core.ErrPersistence, name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", core.ErrPersistence, name, err)
	}
	slog.DebugContext(ctx, "Initialized data file", applog.FieldComponent, applog.ComponentStorage, applog.FieldPath, p)
	return nil
}

// LoadTransactions never fails: a missing or unreadable file yields an empty list.
func (r *FileRepository) LoadTransactions(ctx context.Context, user core.User, kind core.Kind) ([]core.Transaction, error) {
	p, err := r.path(user.Files.File(kind))
	if err != nil {
		slog.WarnContext(ctx, "No data file configured, using empty list",
			applog.FieldComponent, applog.ComponentStorage,
			applog.FieldUsername, user.Username,
			applog.FieldKind, kind)
		return []core.Transaction{}, nil
	}

	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		slog.WarnContext(ctx, "Cannot open data file, using empty list",
			applog.FieldComponent, applog.ComponentStorage, applog.FieldPath, p, applog.FieldError, err)
		return []core.Transaction{}, nil
	}
	defer f.Close()

	records, skipped, err := readTransactions(f, kind)
	if err != nil {
		slog.WarnContext(ctx, "Malformed data file, using empty list",
			applog.FieldComponent, applog.ComponentStorage, applog.FieldPath, p, applog.FieldError, err)
		return []core.Transaction{}, nil
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped rows with unreadable amounts",
			applog.FieldComponent, applog.ComponentStorage, applog.FieldPath, p, "skipped", skipped)
	}
	return records, nil
}

func (r *FileRepository) SaveTransactions(ctx context.Context, user core.User, kind core.Kind, records []core.Transaction) error {
	p, err := r.path(user.Files.File(kind))
	if err != nil {
		return err
	}
	err = WriteFileAtomic(p, filePerm, func(w io.Writer) error {
		return writeTransactions(w, kind, records)
	})
	if err != nil {
		return fmt.Errorf("%w: save %s: %v", core.ErrPersistence, kind.Plural(), err)
	}
	slog.DebugContext(ctx, "Saved transactions",
		applog.FieldComponent, applog.ComponentStorage, applog.FieldPath, p, applog.FieldRecords, len(records))
	return nil
}

// LoadBudgets never fails: a missing or malformed file means no budgets.
func (r *FileRepository) LoadBudgets(ctx context.Context, user core.User) (core.Budgets, error) {
	p, err := r.path(user.Files.Budgets)
	if err != nil {
		return core.Budgets{}, nil
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return core.Budgets{}, nil
	}
	if err != nil {
		slog.WarnContext(ctx, "Cannot read budget file, using no budgets",
			applog.FieldComponent, applog.ComponentStorage, applog.FieldPath, p, applog.FieldError, err)
		return core.Budgets{}, nil
	}

	var budgets core.Budgets
	if err := json.Unmarshal(data, &budgets); err != nil {
		slog.WarnContext(ctx, "Malformed budget file, using no budgets",
			applog.FieldComponent, applog.ComponentStorage, applog.FieldPath, p, applog.FieldError, err)
		return core.Budgets{}, nil
	}
	return budgets, nil
}

func (r *FileRepository) SaveBudgets(ctx context.Context, user core.User, budgets core.Budgets) error {
	p, err := r.path(user.Files.Budgets)
	if err != nil {
		return err
	}
	data, err := json.Marshal(budgets)
	if err != nil {
		return fmt.Errorf("%w: encode budgets: %v", core.ErrPersistence, err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "    "); err != nil {
		return fmt.Errorf("%w: encode budgets: %v", core.ErrPersistence, err)
	}

	err = WriteFileAtomic(p, filePerm, func(w io.Writer) error {
		_, err := w.Write(out.Bytes())
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: save budgets: %v", core.ErrPersistence, err)
	}
	return nil
}

// writeTransactions writes the header and exactly the declared fields of each record.
func writeTransactions(w io.Writer, kind core.Kind, records []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(kind.Header()); err != nil {
		return err
	}
	for _, t := range records {
		row := []string{t.Date, t.Category, t.AmountBase.String(), t.OriginalAmount, t.Notes}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readTransactions maps columns by header name. Missing columns read as empty,
// unknown columns are ignored, rows without a decimal amount are skipped.
func readTransactions(r io.Reader, kind core.Kind) ([]core.Transaction, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []core.Transaction{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := col[name]; !dup {
			col[name] = i
		}
	}
	field := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	records := []core.Transaction{}
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		amount, err := core.ParseDecimal(field(row, "Amount"))
		if err != nil {
			skipped++
			continue
		}
		records = append(records, core.Transaction{
			Date:           field(row, "Date"),
			Category:       field(row, kind.CategoryField()),
			AmountBase:     amount,
			OriginalAmount: field(row, "Original_Amount"),
			Notes:          field(row, "Notes"),
		})
	}
	return records, skipped, nil
}
