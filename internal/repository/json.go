package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sort"

	"github.com/ghaggin/coachportal/internal/config"
	"github.com/ghaggin/coachportal/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errTableFileIsDir = errors.New("table file is dir")
)

type Data struct {
	Files []model.SharedFile `json:"files"`
}

type jsonRepo struct {
	path string
	log  *zap.Logger

	data *Data
}

type jsonParams struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

func NewJSON(p jsonParams) (Repository, error) {
	return newJSON(p.Config.Files.Path, p.Log), nil
}

func newJSON(path string, log *zap.Logger) *jsonRepo {
	r := &jsonRepo{
		path: path,
		log:  log,
		data: &Data{},
	}

	err := r.readfile()
	if err != nil {
		// only log, the dashboard shows no files
		r.log.Warn("failed reading shared files", zap.String("path", path), zap.Error(err))
	}

	// newest first
	sort.SliceStable(r.data.Files, func(i, j int) bool {
		return r.data.Files[i].Date > r.data.Files[j].Date
	})

	return r
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

	return json.NewDecoder(f).Decode(&r.data)
}

func (r *jsonRepo) ListFiles(_ context.Context) ([]model.SharedFile, error) {
	out := make([]model.SharedFile, len(r.data.Files))
	copy(out, r.data.Files)
	return out, nil
}

func (r *jsonRepo) GetFile(_ context.Context, id string) (*model.SharedFile, error) {
	for _, f := range r.data.Files {
		if f.ID == id {
			return &f, nil
		}
	}

	return nil, ErrNotFound
}
