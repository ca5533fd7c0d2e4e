package rpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// sentinels that survive the wire. The status message starts with the
// sentinel's text, which is how FromStatus recognises it.
var sentinels = []struct {
	code codes.Code
	err  error
}{
	{codes.Unauthenticated, common.ErrUnauthenticated},
	{codes.Unauthenticated, common.ErrTokenExpired},
	{codes.Unauthenticated, common.ErrRefreshTokenExpired},
	{codes.Unauthenticated, common.ErrInvalidToken},
	{codes.Unauthenticated, common.ErrorUnauthorized},
	{codes.PermissionDenied, common.ErrSelfVoteForbidden},
	{codes.PermissionDenied, common.ErrorForbidden},
	{codes.AlreadyExists, common.ErrAlreadySaved},
	{codes.AlreadyExists, common.ErrAlreadyOnWaitlist},
	{codes.AlreadyExists, common.ErrorAlreadyExists},
	{codes.NotFound, common.ErrorNotFound},
	{codes.InvalidArgument, common.ErrorValidation},
}

// ToStatus maps a service error to a gRPC status. The second result is false
// for errors that had no mapping and were reported as Internal; their text
// is not sent to the caller.
func ToStatus(err error) (error, bool) {
	if err == nil {
		return nil, true
	}
	if _, ok := status.FromError(err); ok {
		return err, true
	}

	var cv *common.ConstraintViolationError
	switch {
	case errors.As(err, &cv):
		return status.Error(codes.AlreadyExists, common.ErrorAlreadyExists.Error()+": "+cv.Field), true
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error()), true
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error()), true
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return status.Error(s.code, messageFrom(err, s.err)), true
		}
	}
	return status.Error(codes.Internal, common.ErrorInternal.Error()), false
}

// messageFrom puts the sentinel text first and keeps any detail after it.
func messageFrom(err, sentinel error) string {
	msg := err.Error()
	if strings.HasPrefix(msg, sentinel.Error()) {
		return msg
	}
	return sentinel.Error()
}

// FromStatus turns a gRPC error back into the matching common sentinel so
// callers can use errors.Is. Unknown errors are returned unchanged.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return err
	}
	for _, s := range sentinels {
		if st.Code() == s.code && strings.HasPrefix(st.Message(), s.err.Error()) {
			return wrapDetail(s.err, st.Message())
		}
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return wrapDetail(common.ErrorUnauthorized, st.Message())
	case codes.PermissionDenied:
		return wrapDetail(common.ErrorForbidden, st.Message())
	case codes.NotFound:
		return wrapDetail(common.ErrorNotFound, st.Message())
	case codes.AlreadyExists:
		return wrapDetail(common.ErrorAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return wrapDetail(common.ErrorValidation, st.Message())
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	}
	return err
}

type detailError struct {
	sentinel error
	msg      string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.sentinel }

func wrapDetail(sentinel error, msg string) error {
	if msg == "" || msg == sentinel.Error() {
		return sentinel
	}
	return &detailError{sentinel: sentinel, msg: msg}
}
