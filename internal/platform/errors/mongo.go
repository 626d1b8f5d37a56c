package errors

// mongo-driver error classification

import (
	"context"
	stderrs "errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// IsMongoDuplicateKey reports an E11000 write error
func IsMongoDuplicateKey(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err)
}

// IsMongoRetryable reports network errors and timeouts the driver flags as transient
func IsMongoRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) {
		return false
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// FromMongo wraps a driver error with a mapped ErrorCode; nil stays nil
func FromMongo(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case stderrs.Is(err, mongo.ErrNoDocuments):
		return Wrap(err, ErrorCodeNotFound, msg)
	case mongo.IsDuplicateKeyError(err):
		return Wrap(err, ErrorCodeDuplicateKey, msg)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return Wrap(err, ErrorCodeUnavailable, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}
