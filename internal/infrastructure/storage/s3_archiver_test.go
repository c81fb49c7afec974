package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects   map[string][]byte
	meta      map[string]map[string]string
	headErr   error
	putErr    error
	createErr error
	created   int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, meta: map[string]map[string]string{}}
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.objects[key] = body
	f.meta[key] = in.Metadata
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeObjects) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func TestS3Archiver_Archive(t *testing.T) {
	objects := newFakeObjects()
	a := newS3Archiver(objects, "bucket", "")
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	key, err := a.Archive(context.Background(), Archive{
		Platform:  "shopmy",
		CreatorID: "nicki",
		Job:       "shopmy_sync",
		FetchedAt: at,
		Payload:   map[string]any{"payouts": []int{1, 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "raw/shopmy/nicki/2025-06-01/shopmy_sync-1748779200.json", key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(objects.objects[key], &got))
	assert.Len(t, got["payouts"], 2)
	assert.Equal(t, "nicki", objects.meta[key]["creator"])
}

func TestS3Archiver_ArchiveErrors(t *testing.T) {
	objects := newFakeObjects()
	a := newS3Archiver(objects, "bucket", "raw")
	ctx := context.Background()

	_, err := a.Archive(ctx, Archive{Platform: "ltk"})
	assert.Error(t, err, "job is required")

	_, err = a.Archive(ctx, Archive{Platform: "ltk", Job: "ltk_sync", Payload: make(chan int)})
	assert.ErrorContains(t, err, "encode")

	objects.putErr = errors.New("boom")
	_, err = a.Archive(ctx, Archive{Platform: "ltk", Job: "ltk_sync", Payload: 1})
	assert.ErrorContains(t, err, "boom")
}

func TestS3Archiver_EnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("exists", func(t *testing.T) {
		objects := newFakeObjects()
		require.NoError(t, newS3Archiver(objects, "b", "").EnsureBucket(ctx))
		assert.Zero(t, objects.created)
	})

	t.Run("created when missing", func(t *testing.T) {
		objects := newFakeObjects()
		objects.headErr = &types.NotFound{}
		require.NoError(t, newS3Archiver(objects, "b", "").EnsureBucket(ctx))
		assert.Equal(t, 1, objects.created)
	})

	t.Run("already owned is fine", func(t *testing.T) {
		objects := newFakeObjects()
		objects.headErr = &types.NoSuchBucket{}
		objects.createErr = &types.BucketAlreadyOwnedByYou{}
		require.NoError(t, newS3Archiver(objects, "b", "").EnsureBucket(ctx))
	})

	t.Run("head failure", func(t *testing.T) {
		objects := newFakeObjects()
		objects.headErr = errors.New("forbidden")
		assert.ErrorContains(t, newS3Archiver(objects, "b", "").EnsureBucket(ctx), "existence")
	})
}
