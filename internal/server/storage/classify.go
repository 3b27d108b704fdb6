package storage

import (
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/netx"
	"github.com/sony/gobreaker"
)

// Class is the coarse category of a store error that drives retries and
// HTTP status mapping.
type Class int

const (
	ClassFatal Class = iota
	ClassTransient
	ClassConflict
	ClassNotFound
	ClassUnavailable
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassConflict:
		return "conflict"
	case ClassNotFound:
		return "not_found"
	case ClassUnavailable:
		return "unavailable"
	default:
		return "fatal"
	}
}

const codeClockSkew = "RequestTimeTooSkewed"

// Classify maps err to a Class. nil is classified as fatal; callers
// classify failures only.
func Classify(err error) Class {
	if errors.Is(err, common.ErrorNotFound) {
		return ClassNotFound
	}
	if errors.Is(err, common.ErrorConflict) {
		return ClassConflict
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ClassUnavailable
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return ClassNotFound
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return ClassNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case codeClockSkew:
			return ClassTransient
		case "NoSuchKey", "NotFound":
			return ClassNotFound
		}
	}

	// Presigned PUTs bypass the SDK; the store's error code is in the body.
	var se *netx.StatusError
	if errors.As(err, &se) && strings.Contains(se.Body, "<Code>"+codeClockSkew+"</Code>") {
		return ClassTransient
	}
	return ClassFatal
}
