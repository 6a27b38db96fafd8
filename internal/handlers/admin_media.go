// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"heritage/internal/imaging"
	"heritage/internal/models"
	"heritage/internal/render"
	"heritage/internal/storage"
	"heritage/internal/taxonomy"
)

// maxUploadSize is the maximum size of a single uploaded image (20 MB).
const maxUploadSize = 20 << 20

// upload is a validated image file read from a multipart form.
type upload struct {
	data        []byte
	contentType string
	name        string
}

// imageView pairs a gallery row with its resolved public URLs.
type imageView struct {
	models.SiteImage
	ThumbURL string
}

// imageViews resolves storage keys to public URLs. Without storage the
// URLs stay empty.
func imageViews(objects storage.ObjectStore, images []models.SiteImage) []imageView {
	out := make([]imageView, len(images))
	for i, img := range images {
		out[i] = imageView{SiteImage: img}
		if objects == nil {
			continue
		}
		out[i].URL = objects.FileURL(img.StoragePath)
		out[i].ThumbURL = out[i].URL
		if img.ThumbPath != nil {
			out[i].ThumbURL = objects.FileURL(*img.ThumbPath)
		}
	}
	return out
}

// parseUploadForm limits the request body and parses the multipart form.
// It answers 503 when storage is missing and 413 when the body is too big.
func (a *Admin) parseUploadForm(w http.ResponseWriter, r *http.Request, files int) bool {
	if a.objects == nil {
		http.Error(w, "Object storage is not configured.", http.StatusServiceUnavailable)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, int64(files)*maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too large. Maximum size is 20 MB per image.", http.StatusRequestEntityTooLarge)
		return false
	}
	return true
}

// readUpload reads and sniffs one multipart file.
func readUpload(fh *multipart.FileHeader) (*upload, error) {
	if fh.Size > maxUploadSize {
		return nil, fmt.Errorf("%s: file too large", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	ct, ext, err := imaging.Sniff(data)
	if err != nil {
		return nil, err
	}
	name := fh.Filename
	if filepath.Ext(name) == "" {
		name += ext
	}
	return &upload{data: data, contentType: ct, name: name}, nil
}

// formUpload reads the single file posted under field.
func (a *Admin) formUpload(w http.ResponseWriter, r *http.Request, field string) (*upload, bool) {
	if !a.parseUploadForm(w, r, 1) {
		return nil, false
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		http.Error(w, "No file provided.", http.StatusBadRequest)
		return nil, false
	}
	up, err := readUpload(files[0])
	if err != nil {
		fail(w, "read upload failed", err)
		return nil, false
	}
	return up, true
}

// put stores up under key and returns its public URL.
func (a *Admin) put(ctx context.Context, key string, up *upload) (string, error) {
	if err := a.objects.Upload(ctx, key, up.contentType, bytes.NewReader(up.data), int64(len(up.data))); err != nil {
		return "", err
	}
	return a.objects.FileURL(key), nil
}

// removeURL deletes the object behind a public URL, best-effort. URLs
// outside the bucket are left alone.
func (a *Admin) removeURL(ctx context.Context, url *string) {
	if a.objects == nil || url == nil {
		return
	}
	key, ok := a.objects.KeyFromURL(*url)
	if !ok {
		return
	}
	if err := a.objects.Delete(ctx, key); err != nil {
		slog.Warn("object delete failed", "error", err, "key", key)
	}
}

// removeImageObjects deletes a gallery image and its thumbnail from
// storage, best-effort.
func (a *Admin) removeImageObjects(ctx context.Context, img *models.SiteImage) {
	if a.objects == nil {
		return
	}
	keys := []string{img.StoragePath}
	if img.ThumbPath != nil {
		keys = append(keys, *img.ThumbPath)
	}
	for _, key := range keys {
		if err := a.objects.Delete(ctx, key); err != nil {
			slog.Warn("object delete failed", "error", err, "key", key)
		}
	}
}

// CoverUpload replaces a listing's cover photo.
func (a *Admin) CoverUpload(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	up, ok := a.formUpload(w, r, "file")
	if !ok {
		return
	}

	ctx := r.Context()
	key := storage.SiteKey(storage.Covers, site.ID, up.name, time.Now())
	url, err := a.put(ctx, key, up)
	if err != nil {
		fail(w, "cover upload failed", err)
		return
	}

	previous := site.CoverPhotoURL
	site.CoverPhotoURL = &url
	updated, err := a.sites.Update(ctx, site)
	if err != nil || updated == nil {
		a.removeURL(ctx, &url)
	}
	if err != nil {
		fail(w, "save cover failed", err)
		return
	}
	if updated == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	a.removeURL(ctx, previous)
	a.invalidate(r, updated.Slug)

	data := a.listingPageData(r, updated, nil, "")
	data.Flashes = []render.Flash{{Type: "success", Message: "Cover photo updated."}}
	a.renderer.Page(w, r, "listing_edit", data)
}

// GalleryPage renders the gallery manager of a listing.
func (a *Admin) GalleryPage(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	a.renderGallery(w, r, site)
}

func (a *Admin) renderGallery(w http.ResponseWriter, r *http.Request, site *models.Site) {
	images, err := a.gallery.List(r.Context(), site.ID, 0)
	if err != nil {
		slog.Error("list gallery failed", "error", err)
	}
	a.renderer.Page(w, r, "listing_gallery", &render.PageData{
		Title:   site.Title + " · Gallery",
		Section: "listings",
		Data: map[string]any{
			"Site":       site,
			"Tab":        "gallery",
			"Images":     imageViews(a.objects, images),
			"HasStorage": a.objects != nil,
		},
	})
}

// GalleryUpload stores every file posted under "files", generates a
// thumbnail for each and appends them to the gallery.
func (a *Admin) GalleryUpload(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	if !a.parseUploadForm(w, r, 10) {
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No file provided.", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	for _, fh := range files {
		up, err := readUpload(fh)
		if err != nil {
			fail(w, "read upload failed", err)
			return
		}
		if err := a.addGalleryImage(ctx, site, up); err != nil {
			fail(w, "gallery upload failed", err)
			return
		}
	}
	a.invalidate(r, site.Slug)
	a.renderGallery(w, r, site)
}

func (a *Admin) addGalleryImage(ctx context.Context, site *models.Site, up *upload) error {
	key := storage.SiteKey(storage.Gallery, site.ID, up.name, time.Now())
	if _, err := a.put(ctx, key, up); err != nil {
		return err
	}

	img := &models.SiteImage{SiteID: site.ID, StoragePath: key}
	thumb, err := imaging.Thumbnail(up.data, imaging.ThumbWidth)
	if err != nil {
		slog.Warn("thumbnail generation failed", "error", err, "key", key)
	} else if thumb != nil {
		tk := storage.ThumbKey(key)
		if err := a.objects.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
			slog.Warn("thumbnail upload failed", "error", err, "key", tk)
		} else {
			img.ThumbPath = &tk
		}
	}

	if _, err := a.gallery.Add(ctx, img); err != nil {
		a.removeImageObjects(ctx, img)
		return err
	}
	return nil
}

// galleryImage loads {imageID} and checks that it belongs to site.
func (a *Admin) galleryImage(w http.ResponseWriter, r *http.Request, site *models.Site) (*models.SiteImage, bool) {
	id, ok := urlID(w, r, "imageID")
	if !ok {
		return nil, false
	}
	img, err := a.gallery.FindByID(r.Context(), id)
	if err != nil {
		fail(w, "find image failed", err)
		return nil, false
	}
	if img == nil || img.SiteID != site.ID {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil, false
	}
	return img, true
}

// GalleryUpdate saves an image's alt text, caption, credit and cover flag.
func (a *Admin) GalleryUpdate(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	img, ok := a.galleryImage(w, r, site)
	if !ok {
		return
	}
	img.AltText = optionalText(r.FormValue("alt_text"))
	img.Caption = optionalText(r.FormValue("caption"))
	img.Credit = optionalText(r.FormValue("credit"))
	img.IsCover = formBool(r, "is_cover")
	if err := a.gallery.Update(r.Context(), img); err != nil {
		fail(w, "update image failed", err)
		return
	}
	a.invalidate(r, site.Slug)
	a.renderGallery(w, r, site)
}

// GalleryMove swaps an image with its neighbour.
func (a *Admin) GalleryMove(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	img, ok := a.galleryImage(w, r, site)
	if !ok {
		return
	}
	dir, ok := taxonomy.ParseDirection(chi.URLParam(r, "dir"))
	if !ok {
		http.Error(w, "Invalid direction", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	images, err := a.gallery.List(ctx, site.ID, 0)
	if err != nil {
		fail(w, "list gallery failed", err)
		return
	}
	ids := make([]uuid.UUID, len(images))
	for i, m := range images {
		ids[i] = m.ID
	}
	if other, ok := neighbor(ids, img.ID, dir); ok {
		if err := a.gallery.Swap(ctx, img.ID, other); err != nil {
			fail(w, "move image failed", err)
			return
		}
		a.invalidate(r, site.Slug)
	}
	a.renderGallery(w, r, site)
}

// GalleryDelete removes the row first, then the stored objects
// best-effort.
func (a *Admin) GalleryDelete(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	img, ok := a.galleryImage(w, r, site)
	if !ok {
		return
	}
	ctx := r.Context()
	deleted, err := a.gallery.Delete(ctx, img.ID)
	if err != nil {
		fail(w, "delete image failed", err)
		return
	}
	if deleted == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	a.removeImageObjects(ctx, deleted)
	a.invalidate(r, site.Slug)
	a.renderGallery(w, r, site)
}
