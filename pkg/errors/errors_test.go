// Package errors_test covers the AppError type, factory functions, and
// error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/ecowarn/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"schema mismatch", errors.ErrCodeSchemaMismatch, "missing Time column"},
		{"training failure", errors.ErrCodeTrainingFailure, "single class present"},
		{"missing data", errors.ErrCodeReferenceDataMissing, "aquatic_MDA_train.xlsx"},
		{"internal", errors.CodeInternal, "unexpected failure"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	ae := errors.Newf(errors.ErrCodeTrainingFailure, "only %d class(es)", 1)
	assert.Equal(t, "only 1 class(es)", ae.Message)
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	root := stderrors.New("disk on fire")
	ae := errors.Wrap(root, errors.ErrCodeReferenceDataInvalid, "read table")

	require.NotNil(t, ae)
	assert.True(t, stderrors.Is(ae, root))
	assert.Equal(t, root, ae.Unwrap())
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	inner := errors.New(errors.ErrCodeSchemaMismatch, "no Time column")
	outer := errors.Wrap(inner, errors.CodeUnknown, "prepare aquatic MDA")

	assert.Equal(t, errors.ErrCodeSchemaMismatch, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	inner := errors.New(errors.ErrCodeSchemaMismatch, "no Time column")
	outer := errors.Wrap(inner, errors.ErrCodeTrainingFailure, "fit")

	assert.Equal(t, errors.ErrCodeTrainingFailure, outer.Code)
	assert.True(t, errors.IsSchemaMismatch(outer))
	assert.True(t, errors.IsTrainingFailure(outer))
}

func TestError_Format(t *testing.T) {
	ae := errors.New(errors.ErrCodeTrainingFailure, "single class")
	assert.Equal(t, "[MDL_001] single class", ae.Error())

	withDetail := ae.WithDetail("medium=soil endpoint=ROS")
	assert.Equal(t, "[MDL_001] single class: medium=soil endpoint=ROS", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWithDetail_NilReceiverReturnsNil(t *testing.T) {
	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithCause_AttachesCause(t *testing.T) {
	cause := stderrors.New("root")
	ae := errors.New(errors.CodeInternal, "outer").WithCause(cause)
	assert.True(t, stderrors.Is(ae, cause))
}

func TestIsCode_ThroughFmtWrapping(t *testing.T) {
	ae := errors.New(errors.ErrCodeReferenceDataMissing, "soil_ROS_train.xlsx")
	wrapped := fmt.Errorf("assessment: %w", ae)

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeReferenceDataMissing))
	assert.True(t, errors.IsMissingReferenceData(wrapped))
	assert.True(t, errors.IsNotFound(wrapped))
	assert.False(t, errors.IsCode(wrapped, errors.ErrCodeSchemaMismatch))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeSchemaMismatch))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.ErrCodeSchemaMismatch))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, errors.IsValidation(errors.Validation("concentration", "must be numeric")))
	assert.True(t, errors.IsValidation(errors.InvalidParam("bad")))
	assert.False(t, errors.IsValidation(errors.Internal("boom")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeTrainingFailure,
		errors.GetCode(fmt.Errorf("ctx: %w", errors.New(errors.ErrCodeTrainingFailure, "x"))))
}

func TestStack_ContainsCaller(t *testing.T) {
	ae := errors.NotFound("x")
	assert.True(t, strings.Contains(ae.Stack, "errors_test"))
}

func TestAsAndIs_FollowTheChain(t *testing.T) {
	t.Parallel()
	sentinel := stderrors.New("disk gone")
	err := fmt.Errorf("outer: %w", errors.Wrap(sentinel, errors.ErrCodeExternalService, "load failed"))

	var ae *errors.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, errors.ErrCodeExternalService, ae.Code)
	assert.True(t, errors.Is(err, sentinel))
}

//Personal.AI order the ending
