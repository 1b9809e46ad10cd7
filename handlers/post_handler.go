package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"travel-blog-server/models"
	"travel-blog-server/services"
)

type PostHandler struct {
	postService *services.PostService
	maxUpload   int64
}

func NewPostHandler(postService *services.PostService, maxUpload int64) *PostHandler {
	return &PostHandler{postService: postService, maxUpload: maxUpload}
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	cleanup, err := parseMultipart(w, r, h.maxUpload)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	image, closeImage, err := formAttachment(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer closeImage()

	input := services.CreatePostInput{
		Title:      r.FormValue("title"),
		Summary:    r.FormValue("summary"),
		Categories: services.ParseCategories(r.FormValue("categories")),
		Country:    r.FormValue("country"),
		City:       r.FormValue("city"),
		Region:     r.FormValue("region"),
	}
	post, err := h.postService.Create(r.Context(), caller, input, image)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, post)
}

func (h *PostHandler) list(w http.ResponseWriter, r *http.Request, filter models.PostFilter) {
	posts, err := h.postService.List(r.Context(), filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, posts)
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, models.PostFilter{
		Region:   models.Region(q.Get("region")),
		Country:  q.Get("country"),
		Category: q.Get("category"),
	})
}

func (h *PostHandler) ListByRegion(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.PostFilter{Region: models.Region(mux.Vars(r)["region"])})
}

func (h *PostHandler) ListByCountry(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.PostFilter{Country: mux.Vars(r)["country"]})
}

func (h *PostHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	author, err := pathObjectID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	h.list(w, r, models.PostFilter{Author: author})
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathObjectID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, post)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathObjectID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	cleanup, err := parseMultipart(w, r, h.maxUpload)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	image, closeImage, err := formAttachment(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer closeImage()

	input := services.UpdatePostInput{
		Title:   formValue(r, "title"),
		Summary: formValue(r, "summary"),
		Country: formValue(r, "country"),
		City:    formValue(r, "city"),
		Region:  formValue(r, "region"),
	}
	if raw := formValue(r, "categories"); raw != nil {
		categories := services.ParseCategories(*raw)
		input.Categories = &categories
	}

	post, err := h.postService.Update(r.Context(), caller, id, input, image)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, post)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathObjectID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.postService.Delete(r.Context(), caller, id); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

func (h *PostHandler) MapData(w http.ResponseWriter, r *http.Request) {
	data, err := h.postService.MapData(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, data)
}
