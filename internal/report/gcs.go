// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/AleutianAI/tia/internal/sequence"
)

// GCSExporter uploads the report JSON to a GCS bucket, for CI pipelines
// that want run history retained outside the local workspace.
type GCSExporter struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSExporter builds a GCSExporter authenticated via the service
// account key at saKeyPath, writing objects under bucket/prefix.
func NewGCSExporter(ctx context.Context, bucket, prefix, saKeyPath string) (*GCSExporter, error) {
	var opts []option.ClientOption
	if saKeyPath != "" {
		opts = append(opts, option.WithCredentialsFile(saKeyPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("report: create GCS client: %w", err)
	}

	return &GCSExporter{client: client, bucket: bucket, prefix: prefix}, nil
}

// Export implements Exporter.
func (g *GCSExporter) Export(ctx context.Context, r sequence.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}

	objectPath := fmt.Sprintf("%s/%s.json", g.prefix, r.RunID)
	obj := g.client.Bucket(g.bucket).Object(objectPath)
	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("report: write gs://%s/%s: %w", g.bucket, objectPath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("report: close gs://%s/%s: %w", g.bucket, objectPath, err)
	}
	return nil
}

// Close releases the underlying GCS client.
func (g *GCSExporter) Close() error {
	return g.client.Close()
}
