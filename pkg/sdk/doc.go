// Package visionlink provides an embedded Go client for the visionlink
// similarity-linking service backed by Redis with RedisJSON and RediSearch.
//
// The client wires the service's storage, linking and search layers directly
// over a Redis connection, so a Go program can create visions and products,
// search semantically and record clicks without going through the HTTP API.
//
//	client, err := visionlink.New(ctx,
//	    visionlink.WithRedis("localhost:6379", ""),
//	    visionlink.WithEmbedder(myEmbedder),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	res, err := client.Visions().Create(ctx, visionlink.CreateVision{
//	    OwnerID:     "u1",
//	    Description: "a mechanical keyboard with quiet switches",
//	})
//
// Creating a vision links it to its closest products; creating a product
// offers it to nearby visions for admission into their top-3 link sets.
// An Embedder is required for creates and semantic search; reads, sale
// updates, support toggles and click recording work without one.
package visionlink
