package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/DougThompson1976/i-love-emily/cmd/emily/internal/config"
	"github.com/DougThompson1976/i-love-emily/pkg/corpus"
	"github.com/DougThompson1976/i-love-emily/pkg/kv"
	"github.com/DougThompson1976/i-love-emily/pkg/storage"
)

// dbPrefix is where the corpus database lives inside the badger store.
var dbPrefix = kv.Key{"corpus"}

// openCorpus returns a FileStore rooted at a corpus location.
func openCorpus(ctx context.Context, cfg *config.Config, location string) (storage.FileStore, error) {
	loc, err := storage.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	if !loc.IsS3() {
		local, err := storage.NewLocal(loc.Path)
		if err != nil {
			return nil, err
		}
		return local, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.PathStyle
	})
	return storage.NewS3(client, loc.Bucket, loc.Path), nil
}

func openStore(dir string) (*kv.Badger, error) {
	return kv.NewBadger(kv.BadgerOptions{Dir: dir, Logger: slog.Default()})
}

// loadDatabase reads the corpus database kept in the badger directory dir.
func loadDatabase(ctx context.Context, dir string) (*corpus.Database, error) {
	store, err := openStore(dir)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	db, err := corpus.Load(ctx, store, dbPrefix)
	if err != nil {
		return nil, fmt.Errorf("load database %s: %w", dir, err)
	}
	return db, nil
}
