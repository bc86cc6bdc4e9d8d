package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ghaggin/expenses/internal/model"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errTableFileIsDir = errors.New("table file is dir")
)

type Data struct {
	Expenses []model.Expense `json:"expenses"`
}

// jsonRepo is a local stand-in for the remote backend. Records of every user
// live in one file, in insertion order.
type jsonRepo struct {
	path string
	log  *zap.Logger

	mu   sync.RWMutex
	data *Data
}

func NewJSON(p Params) (Repository, error) {
	r := &jsonRepo{
		path: p.Config.API.FilePath,
		log:  p.Log,
		data: &Data{},
	}

	err := r.readfile()
	if errors.Is(err, fs.ErrNotExist) {
		// data starts empty and the file is created when the service stops
		r.log.Warn("json repo data file missing", zap.String("path", r.path))
	} else if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	p.LC.Append(fx.Hook{
		OnStop: r.stop,
	})

	return r, nil
}

func (r *jsonRepo) stop(_ context.Context) error {
	return r.writefile()
}

func (r *jsonRepo) readfile() error {
	finfo, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errTableFileIsDir
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	var data Data
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return err
	}

	r.data = &data
	return nil
}

func (r *jsonRepo) writefile() error {
	r.mu.RLock()
	b, err := json.MarshalIndent(r.data, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	// write aside and rename so a failed write leaves the old file intact
	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), r.path)
}

func (r *jsonRepo) ListExpenses(_ context.Context, s *model.Session) ([]model.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expenses := []model.Expense{}
	for _, e := range r.data.Expenses {
		if e.User == s.User.ID {
			expenses = append(expenses, e)
		}
	}

	return expenses, nil
}

func (r *jsonRepo) CreateExpense(_ context.Context, s *model.Session, e *model.NewExpense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data.Expenses = append(r.data.Expenses, model.Expense{
		ID:          uuid.NewString(),
		Title:       e.Title,
		Description: e.Description,
		Mode:        e.Mode,
		Amount:      e.Amount,
		User:        e.User,
	})
	return nil
}
