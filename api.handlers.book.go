package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jeamon/demo-books/docs"
	"github.com/julienschmidt/httprouter"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Index greets the api users.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := WriteResponse(r.Context(), w, http.StatusOK, map[string]string{"message": "Books API 📚"}); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send index response", zap.Error(err))
	}
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	resp := &StatusResponse{
		RequestID: requestID,
		Status:    "up & running since " + uptime(api.clock.Since(api.stats.started)),
		Message:   "Hello. Books api is available. Enjoy :)",
	}
	if err := WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send status response", zap.Error(err))
	}
}

// OpenAPI serves the registered OpenAPI document of the books api.
func (api *APIHandler) OpenAPI(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		logger.Error("failed to read openapi document", zap.Error(err))
		api.sendError(w, r, http.StatusInternalServerError, InternalErrorDetail)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if _, err = w.Write([]byte(doc)); err != nil {
		logger.Error("failed to send openapi response", zap.Error(err))
	}
}

func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	book, err := ReadBookRequest(r)
	if err != nil {
		logger.Error("failed to create book", zap.Error(err))
		api.sendValidationError(w, r, err)
		return
	}

	book, err = api.bookService.Add(r.Context(), book)
	if err != nil {
		logger.Error("failed to create book", zap.Error(err))
		api.sendError(w, r, http.StatusInternalServerError, InternalErrorDetail)
		return
	}
	logger.Info("success to create book", zap.Int("book.id", book.ID))
	if err = WriteResponse(r.Context(), w, http.StatusCreated, book); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

//nolint:bodyclose
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	// listing may take longer than single book requests on big collections
	// so the write deadline of the connection is extended when possible.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(api.config.Server.LongRequestWriteTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Error("http: failed to update the write deadline", zap.Error(err))
	}

	books, err := api.bookService.GetAll(r.Context())
	if err != nil {
		logger.Error("failed to get all books", zap.Error(err))
		api.sendError(w, r, http.StatusInternalServerError, InternalErrorDetail)
		return
	}
	logger.Info("success to get all books", zap.Int("books.count", len(books)))
	w.Header().Set("X-Total-Count", strconv.Itoa(len(books)))
	if err = WriteResponse(r.Context(), w, http.StatusOK, books); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		logger.Error("book id provided is not valid", zap.String("book.id", ps.ByName("id")))
		api.sendValidationError(w, r, err)
		return
	}

	book, err := api.bookService.GetOne(r.Context(), id)
	if err != nil {
		api.sendStoreError(w, r, "failed to get book", id, err)
		return
	}
	logger.Info("success to get book", zap.Int("book.id", id))
	if err = WriteResponse(r.Context(), w, http.StatusOK, book); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		logger.Error("book id provided is not valid", zap.String("book.id", ps.ByName("id")))
		api.sendValidationError(w, r, err)
		return
	}

	book, err := ReadBookRequest(r)
	if err != nil {
		logger.Error("failed to update book", zap.Int("book.id", id), zap.Error(err))
		api.sendValidationError(w, r, err)
		return
	}

	book, err = api.bookService.Update(r.Context(), id, book)
	if err != nil {
		api.sendStoreError(w, r, "failed to update book", id, err)
		return
	}
	logger.Info("success to update book", zap.Int("book.id", id))
	if err = WriteResponse(r.Context(), w, http.StatusOK, book); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		logger.Error("book id provided is not valid", zap.String("book.id", ps.ByName("id")))
		api.sendValidationError(w, r, err)
		return
	}

	err = api.bookService.Delete(r.Context(), id)
	if err != nil {
		api.sendStoreError(w, r, "failed to delete book", id, err)
		return
	}
	logger.Info("success to delete book", zap.Int("book.id", id))
	if err = WriteNoContent(r.Context(), w); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// sendStoreError answers 404 for a missing book and 500 otherwise.
func (api *APIHandler) sendStoreError(w http.ResponseWriter, r *http.Request, msg string, id int, err error) {
	logger := api.GetLoggerFromContext(r.Context())
	if errors.Is(err, ErrBookNotFound) {
		logger.Error("book does not exist", zap.Int("book.id", id))
		api.sendError(w, r, http.StatusNotFound, BookNotFoundDetail)
		return
	}
	logger.Error(msg, zap.Int("book.id", id), zap.Error(err))
	api.sendError(w, r, http.StatusInternalServerError, InternalErrorDetail)
}

// sendValidationError answers 422 with the list of issues found on the request.
func (api *APIHandler) sendValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var issues ValidationError
	if !errors.As(err, &issues) {
		issues = ValidationError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}
	api.sendError(w, r, http.StatusUnprocessableEntity, issues)
}

func (api *APIHandler) sendError(w http.ResponseWriter, r *http.Request, status int, detail interface{}) {
	if err := WriteErrorResponse(r.Context(), w, status, detail); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send error response", zap.Error(err))
	}
}
