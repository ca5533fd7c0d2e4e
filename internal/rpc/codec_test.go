package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestCodec_PlainStruct(t *testing.T) {
	c := jsonCodec{}
	sv := 6
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	b, err := c.Marshal(&SearchCriteria{Tags: []string{"neon"}, SVVersion: &sv, From: &at})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":["neon"],"sv_version":6,"from":"2025-05-01T00:00:00Z"}`, string(b))

	var got SearchCriteria
	require.NoError(t, c.Unmarshal(b, &got))
	assert.Equal(t, 6, *got.SVVersion)
	assert.True(t, at.Equal(*got.From))
}

func TestCodec_ProtoMessage(t *testing.T) {
	c := jsonCodec{}

	b, err := c.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))

	b, err = c.Marshal(wrapperspb.String("ok"))
	require.NoError(t, err)

	got := &wrapperspb.StringValue{}
	require.NoError(t, c.Unmarshal(b, got))
	assert.Equal(t, "ok", got.GetValue())
}
