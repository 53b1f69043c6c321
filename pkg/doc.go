// Package pkg provides the core libraries for readstack figures.
//
// # Overview
//
// readstack draws long-read alignments stacked into rows under a gene
// annotation, with a coverage panel summing the read depth per position.
// The pkg directory is organized into four areas:
//
//  1. Domain: [genome], [layout], [coverage]
//  2. Input: [formats] (PSL, GTF, SAM, BAM)
//  3. Output: [render], [render/panels], [render/sink]
//  4. Orchestration and infrastructure: [pipeline], [cache], [config],
//     [server], [errors], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	PSL / GTF / SAM / BAM files
//	         ↓
//	    [formats] package (features inside the region)
//	         ↓
//	    [layout] package (first-fit rows)  +  [coverage] package (depth)
//	         ↓
//	    [render/panels] package (figure geometry)
//	         ↓
//	    [render/sink] package (SVG/PNG/PDF/JSON)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/readstack/pkg/formats"
//	    "github.com/matzehuels/readstack/pkg/genome"
//	    "github.com/matzehuels/readstack/pkg/layout"
//	)
//
//	region := genome.MustParseRegion("chr7:45232945-45240000")
//	reads, _ := formats.Load(ctx, "p6.psl", formats.FormatPSL, region)
//	packing := layout.Pack(reads, layout.OrderStart)
//	fmt.Println(packing.RowCount)
//
// Most callers use [pipeline.Runner], which adds validation and caching.
package pkg
