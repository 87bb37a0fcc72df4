package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectOptions tune a single connection attempt.
type ConnectOptions struct {
	// Timeout bounds server selection and the initial ping.
	Timeout              time.Duration
	TLSAllowInvalidCerts bool
}

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, opts ConnectOptions) (*mongo.Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if opts.TLSAllowInvalidCerts {
		if !strings.Contains(uri, "tls=true") && !strings.HasPrefix(uri, srvScheme) {
			uri = withQueryParam(uri, "tls", "true")
		}
		uri = withQueryParam(uri, "tlsInsecure", "true")
	}
	clientOpts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(opts.Timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}
