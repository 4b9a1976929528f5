// Package transport holds what the HTTP and JSON-RPC surfaces share: the
// generation request DTO, its validation and the mapping of core errors.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"payfile-synth/internal/domain"
	"payfile-synth/internal/format"
)

// Service is the slice of the generation usecase the transports call.
type Service interface {
	Formats() []format.Info
	GenerateAndStore(ctx context.Context, req domain.GenerationRequest, namespace string) (*domain.GeneratedFile, domain.StoredFile, error)
	ListFiles(ctx context.Context, namespace string) ([]domain.StoredFile, error)
	PreviewFile(ctx context.Context, namespace, name string, limit int) ([][]string, error)
}

// FlexibleInt accepts a JSON number or a string holding one.
type FlexibleInt int

func (n *FlexibleInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", data)
	}
	*n = FlexibleInt(v)
	return nil
}

// FlexibleBool accepts a JSON boolean or the strings "true" and "false".
type FlexibleBool bool

func (b *FlexibleBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.ToLower(strings.TrimSpace(s)))
	}
	v, err := strconv.ParseBool(string(data))
	if err != nil {
		return fmt.Errorf("expected a boolean, got %s", data)
	}
	*b = FlexibleBool(v)
	return nil
}

// GenerateParams is the wire shape of a generation request.
type GenerateParams struct {
	Format                 string                 `json:"format" validate:"required,oneof=SDDirect Bacs18PaymentLines EaziPay"`
	RowCount               FlexibleInt            `json:"rowCount" validate:"required,min=1,maxrows"`
	IncludeOptionalColumns domain.ColumnSelection `json:"includeOptionalColumns"`
	InjectInvalidRows      FlexibleBool           `json:"injectInvalidRows"`
	AllowInlineEdit        FlexibleBool           `json:"allowInlineEdit"`
	HeaderFlag             FlexibleBool           `json:"headerFlag"`
	DateFormat             string                 `json:"dateFormat" validate:"omitempty,oneof=YYYY-MM-DD DD-MMM-YYYY DD/MM/YYYY"`
	WidthVariant           string                 `json:"widthVariant" validate:"omitempty,oneof=narrow wide"`
}

// ToDomain converts validated params into a core request, filling defaults.
func (p GenerateParams) ToDomain() domain.GenerationRequest {
	req := domain.GenerationRequest{
		Format:            domain.Format(p.Format),
		RowCount:          int(p.RowCount),
		OptionalColumns:   p.IncludeOptionalColumns,
		InjectInvalidRows: bool(p.InjectInvalidRows),
		AllowInlineEdit:   bool(p.AllowInlineEdit),
		IncludeHeader:     bool(p.HeaderFlag),
		DateFormat:        domain.DateFormat(p.DateFormat),
		WidthVariant:      domain.WidthVariant(p.WidthVariant),
	}
	if req.DateFormat == "" {
		req.DateFormat = domain.DateFormatISO
	}
	if req.WidthVariant == "" {
		req.WidthVariant = domain.WidthNarrow
	}
	return req
}

// RequestValidator decodes and validates GenerateParams.
type RequestValidator struct {
	validate *validator.Validate
	maxRows  int
}

// NewRequestValidator bounds rowCount by maxRows.
func NewRequestValidator(maxRows int) (*RequestValidator, error) {
	if maxRows < 1 {
		return nil, fmt.Errorf("maxRows must be at least 1, got %d", maxRows)
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	err := v.RegisterValidation("maxrows", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(maxRows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register maxrows validation: %w", err)
	}
	return &RequestValidator{validate: v, maxRows: maxRows}, nil
}

// Decode parses raw JSON into a validated core request. Every failure wraps
// domain.ErrInvalidRequest.
func (rv *RequestValidator) Decode(raw []byte) (domain.GenerationRequest, error) {
	var p GenerateParams
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return domain.GenerationRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return rv.Validate(p)
}

// Validate checks params and converts them.
func (rv *RequestValidator) Validate(p GenerateParams) (domain.GenerationRequest, error) {
	if err := rv.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return domain.GenerationRequest{}, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, rv.describe(verrs))
		}
		return domain.GenerationRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return p.ToDomain(), nil
}

func (rv *RequestValidator) describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "min":
			msg = "must be at least " + fe.Param()
		case "maxrows":
			msg = fmt.Sprintf("must be at most %d", rv.maxRows)
		case "oneof":
			msg = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
		default:
			msg = "failed " + fe.Tag()
		}
		msgs = append(msgs, fe.Field()+" "+msg)
	}
	return strings.Join(msgs, "; ")
}

// ErrorKind groups errors by how a transport reports them.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalid
	KindNotFound
)

// Classify maps a core or store error to its kind.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrInvalidPath):
		return KindInvalid
	case errors.Is(err, domain.ErrFileNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
