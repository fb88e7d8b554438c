package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	objects map[string][]byte
	putErr  error
	puts    []string
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{objects: make(map[string][]byte)}
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := *in.Bucket + "/" + *in.Key
	f.objects[key] = data
	f.puts = append(f.puts, key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Backend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjectAPI()
	b := NewS3Backend(api, "bucket", "profile/")

	require.NoError(t, b.Save(ctx,
		Entry{Key: "users", Data: []byte(`[]`)},
		Entry{Key: "listings", Data: []byte(`[1]`)},
	))
	assert.Equal(t, []string{"bucket/profile/users.json", "bucket/profile/listings.json"}, api.puts)

	data, err := b.Load(ctx, "listings")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(data))

	require.NoError(t, b.Remove(ctx, "listings"))
	_, err = b.Load(ctx, "listings")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Backend_SaveError(t *testing.T) {
	api := newFakeObjectAPI()
	api.putErr = errors.New("access denied")
	b := NewS3Backend(api, "bucket", "")

	err := b.Save(context.Background(), Entry{Key: "users", Data: []byte(`[]`)})
	assert.EqualError(t, err, "access denied")
}
