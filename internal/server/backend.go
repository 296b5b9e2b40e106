package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/config"
	"github.com/vango-dev/storefront/internal/errors"
	"github.com/vango-dev/storefront/pkg/storage"
)

// openBackend opens the configured cart storage. The returned function
// releases it.
func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, func() error, error) {
	sc := cfg.Storage
	switch sc.Backend {
	case config.BackendMemory, "":
		b := storage.NewMemoryBackend()
		return b, b.Close, nil

	case config.BackendSQL:
		dialect, err := storage.ParseDialect(sc.SQL.Dialect)
		if err != nil {
			return nil, nil, errors.New("SF080").WithDetail("sql").Wrap(err)
		}
		db, err := sql.Open(sc.SQL.Driver, sc.SQL.DSN)
		if err != nil {
			return nil, nil, errors.New("SF080").WithDetailf("sql driver %q", sc.SQL.Driver).Wrap(err)
		}
		b := storage.NewSQLBackend(db,
			storage.WithSQLDialect(dialect),
			storage.WithSQLTableName(sc.SQL.Table),
		)
		if err := b.CreateTable(ctx); err != nil {
			_ = db.Close()
			return nil, nil, errors.New("SF080").WithDetailf("sql table %s", sc.SQL.Table).Wrap(err)
		}
		return b, db.Close, nil

	case config.BackendS3:
		client := s3.New(s3Options(sc.S3))
		b := storage.NewS3Backend(client, sc.S3.Bucket, sc.S3.Prefix)
		return b, func() error { return nil }, nil
	}
	return nil, nil, errors.New("SF003").WithDetailf("%q is not a storage backend", sc.Backend)
}

func s3Options(c config.S3Config) s3.Options {
	opts := s3.Options{
		Region:       c.Region,
		UsePathStyle: c.PathStyle,
		Credentials:  aws.NewCredentialsCache(envCredentials{}),
	}
	if opts.Region == "" {
		opts.Region = os.Getenv("AWS_REGION")
	}
	if c.Endpoint != "" {
		opts.BaseEndpoint = aws.String(c.Endpoint)
	}
	return opts
}

// envCredentials reads static credentials from the standard AWS
// environment variables.
type envCredentials struct{}

func (envCredentials) Retrieve(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("server: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "EnvCredentials",
	}, nil
}

// openCatalog returns the configured product source. mem is set when the
// catalog is held in memory and can be reloaded.
func openCatalog(cfg *config.Config) (client catalog.Client, mem *catalog.Memory, err error) {
	switch {
	case cfg.Catalog.APIURL != "":
		return catalog.NewHTTPClient(cfg.Catalog.APIURL, catalog.WithTimeout(cfg.CatalogTimeout())), nil, nil
	case cfg.Catalog.Fixture != "":
		mem, err = catalog.LoadMemory(cfg.FixturePath())
		if err != nil {
			return nil, nil, err
		}
		return mem, mem, nil
	}
	mem = catalog.Default()
	return mem, mem, nil
}
