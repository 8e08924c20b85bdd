package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBlobNotFound is returned when no blob exists under a name.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore keeps opaque binary objects addressed by name.
type BlobStore interface {
	Put(ctx context.Context, name string, contentType string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// GridFSStore implements BlobStore on a MongoDB GridFS bucket.
type GridFSStore struct {
	bucket  *gridfs.Bucket
	timeout time.Duration
}

// NewGridFSStore creates a store on the "images" bucket of db.
func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("images"))
	if err != nil {
		return nil, fmt.Errorf("error creating gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket, timeout: 30 * time.Second}, nil
}

func (s *GridFSStore) Put(ctx context.Context, name string, contentType string, r io.Reader) error {
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	stream, err := s.bucket.OpenUploadStream(name, opts)
	if err != nil {
		return fmt.Errorf("error opening upload stream: %w", err)
	}
	if err := stream.SetWriteDeadline(s.deadline(ctx)); err != nil {
		_ = stream.Abort()
		return err
	}
	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return fmt.Errorf("error writing blob %s: %w", name, err)
	}
	// Close flushes the last chunk and writes the file document.
	if err := stream.Close(); err != nil {
		return fmt.Errorf("error finalizing blob %s: %w", name, err)
	}
	return nil
}

func (s *GridFSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	if err := stream.SetReadDeadline(s.deadline(ctx)); err != nil {
		stream.Close()
		return nil, err
	}
	return stream, nil
}

func (s *GridFSStore) Delete(ctx context.Context, name string) error {
	cursor, err := s.bucket.FindContext(ctx, bson.M{"filename": name})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var files []struct {
		ID interface{} `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrBlobNotFound
	}
	for _, f := range files {
		if err := s.bucket.DeleteContext(ctx, f.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *GridFSStore) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(s.timeout)
}
