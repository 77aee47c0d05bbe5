package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"
)

type ContextKey string

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
	ConnContextKey          ContextKey = "http-conn"

	// MaxBookRequestBodySize limits the size of book creation or update payloads.
	MaxBookRequestBodySize int64 = 1 << 20
)

// ValidationIssue describes a single invalid part of a request.
type ValidationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError holds every issue found while checking a request.
type ValidationError []ValidationIssue

func (ve ValidationError) Error() string {
	parts := make([]string, 0, len(ve))
	for _, issue := range ve {
		parts = append(parts, strings.Join(issue.Loc, ".")+": "+issue.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func missingFieldIssue(loc ...string) ValidationIssue {
	return ValidationIssue{Loc: loc, Msg: "field required", Type: "value_error.missing"}
}

func emptyFieldIssue(field string) ValidationIssue {
	return ValidationIssue{
		Loc:  []string{"body", field},
		Msg:  "ensure this value has at least 1 characters",
		Type: "value_error.any_str.min_length",
	}
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(RequestNumberContextKey).(uint64); ok {
		return val
	}
	return 0
}

// DecodeBookRequestBody reads the content of a book creation or update request into
// the input. The body must hold exactly one json value. Every field with a wrong json
// type is reported under its own location and added to the returned set so that the
// validation step does not report it a second time.
func DecodeBookRequestBody(r *http.Request, in *BookInput) (map[string]bool, error) {
	mistyped := map[string]bool{}
	if r.Body == nil || r.Body == http.NoBody {
		return mistyped, ValidationError{missingFieldIssue("body")}
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBookRequestBodySize))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return mistyped, ValidationError{missingFieldIssue("body")}
		}
		return mistyped, ValidationError{jsonDecodeIssue(err.Error())}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return mistyped, ValidationError{jsonDecodeIssue("extra data after the json object")}
	}

	var issues ValidationError
	targets := []struct {
		name string
		dst  interface{}
	}{
		{"title", &in.Title},
		{"author", &in.Author},
		{"year", &in.Year},
	}
	for _, target := range targets {
		raw, ok := fields[target.name]
		if !ok {
			continue
		}
		err := json.Unmarshal(raw, target.dst)
		if err == nil {
			continue
		}
		mistyped[target.name] = true
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			issues = append(issues, jsonDecodeIssue(err.Error()))
			continue
		}
		name, kind := jsonTypeNames(typeErr.Type.Kind())
		issues = append(issues, ValidationIssue{
			Loc:  []string{"body", target.name},
			Msg:  "value is not a valid " + name,
			Type: "type_error." + kind,
		})
	}

	if len(issues) != 0 {
		return mistyped, issues
	}
	return mistyped, nil
}

func jsonDecodeIssue(msg string) ValidationIssue {
	return ValidationIssue{Loc: []string{"body"}, Msg: msg, Type: "value_error.jsondecode"}
}

func jsonTypeNames(kind reflect.Kind) (string, string) {
	switch kind {
	case reflect.Int, reflect.Int64:
		return "integer", "integer"
	case reflect.String:
		return "string", "str"
	}
	return kind.String(), kind.String()
}

// ValidateBookInput checks that a book creation or update payload is complete.
// Fields listed in skip already failed decoding and are not checked again.
func ValidateBookInput(in *BookInput, skip map[string]bool) error {
	var issues ValidationError
	if !skip["title"] {
		if in.Title == nil {
			issues = append(issues, missingFieldIssue("body", "title"))
		} else if len(*in.Title) == 0 {
			issues = append(issues, emptyFieldIssue("title"))
		}
	}

	if !skip["author"] {
		if in.Author == nil {
			issues = append(issues, missingFieldIssue("body", "author"))
		} else if len(*in.Author) == 0 {
			issues = append(issues, emptyFieldIssue("author"))
		}
	}

	if !skip["year"] && in.Year == nil {
		issues = append(issues, missingFieldIssue("body", "year"))
	}

	if len(issues) != 0 {
		return issues
	}
	return nil
}

// ReadBookRequest decodes and validates a book creation or update request.
func ReadBookRequest(r *http.Request) (Book, error) {
	var in BookInput
	skip, err := DecodeBookRequestBody(r, &in)
	var issues ValidationError
	if err != nil {
		if !errors.As(err, &issues) || len(skip) == 0 {
			return Book{}, err
		}
	}
	if verr := ValidateBookInput(&in, skip); verr != nil {
		issues = append(issues, verr.(ValidationError)...)
	}
	if len(issues) != 0 {
		return Book{}, issues
	}
	return in.Book(), nil
}

// ParseBookID converts the path parameter into a book id.
func ParseBookID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ValidationError{{
			Loc:  []string{"path", "book_id"},
			Msg:  "value is not a valid integer",
			Type: "type_error.integer",
		}}
	}
	return id, nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// SaveConnInContext is the hook used by the server under ConnContext.
// It sets the underlying connection into the request context for later
// use by ReadDeadline or WriteDeadline method on *CustomResponseWriter.
func SaveConnInContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, ConnContextKey, c)
}

// GetConnFromContext returns the connection saved into the context or nil.
func GetConnFromContext(ctx context.Context) net.Conn {
	if c, ok := ctx.Value(ConnContextKey).(net.Conn); ok {
		return c
	}
	return nil
}
