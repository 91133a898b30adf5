package server

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/distmeta/pkg/buildinfo"
	"github.com/matzehuels/distmeta/pkg/descriptor"
	"github.com/matzehuels/distmeta/pkg/store"
)

// projectJSON mirrors the subset of the PyPI JSON API that index clients read.
type projectJSON struct {
	Info     infoJSON              `json:"info"`
	Releases map[string][]fileJSON `json:"releases"`
	URLs     []fileJSON            `json:"urls"`
}

type infoJSON struct {
	Name                   string            `json:"name"`
	Version                string            `json:"version"`
	Summary                string            `json:"summary"`
	Description            string            `json:"description"`
	DescriptionContentType string            `json:"description_content_type"`
	Author                 string            `json:"author"`
	AuthorEmail            string            `json:"author_email"`
	License                string            `json:"license"`
	HomePage               string            `json:"home_page"`
	ProjectURLs            map[string]string `json:"project_urls,omitempty"`
	RequiresDist           []string          `json:"requires_dist"`
	Classifiers            []string          `json:"classifiers"`
}

// fileJSON is a distribution file entry. distmeta publishes metadata only,
// so release file lists are always empty.
type fileJSON struct {
	Filename string `json:"filename"`
	Yanked   bool   `json:"yanked"`
}

func newProjectJSON(d *descriptor.Descriptor, versions []string) projectJSON {
	info := infoJSON{
		Name:                   d.Name,
		Version:                d.Version,
		Summary:                d.Description,
		Description:            d.LongDescription,
		DescriptionContentType: "text/x-rst",
		Author:                 d.Author,
		AuthorEmail:            d.AuthorEmail,
		License:                d.License,
		HomePage:               d.URL,
		Classifiers:            []string{},
	}
	if d.URL != "" {
		info.ProjectURLs = map[string]string{"Homepage": d.URL}
	}
	for _, r := range d.InstallRequires {
		info.RequiresDist = append(info.RequiresDist, r.String())
	}

	releases := make(map[string][]fileJSON, len(versions))
	for _, v := range versions {
		releases[v] = []fileJSON{}
	}
	return projectJSON{Info: info, Releases: releases, URLs: []fileJSON{}}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) project(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, err := s.store.Latest(r.Context(), name)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeProject(w, r, rec)
}

func (s *Server) release(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "version"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeProject(w, r, rec)
}

func (s *Server) writeProject(w http.ResponseWriter, r *http.Request, rec *store.Record) {
	versions, err := s.store.Versions(r.Context(), rec.Name)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectJSON(rec.Descriptor, versions))
}

func (s *Server) pkgInfo(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "version"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := descriptor.WritePKGInfo(&buf, rec.Descriptor); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// publish stores a JSON descriptor. Descriptors are always validated: the
// index never serves a release its own build would reject.
func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d, err := descriptor.ReadJSON(r.Body)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := d.Validate(); err != nil {
		s.writeErr(w, r, err)
		return
	}
	rec, err := s.store.Put(r.Context(), d)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.logger.Info("published", "name", d.Name, "version", d.Version, "id", rec.ID)

	w.Header().Set("Location", "/pypi/"+url.PathEscape(rec.Name)+"/"+url.PathEscape(rec.Version)+"/json")
	writeJSON(w, http.StatusCreated, rec)
}
