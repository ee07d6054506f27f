// Copyright 2024 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
Package memory implements a tiered agent memory engine.

# Overview

Memory items flow through three storage tiers: hot (fully indexed, full
content), archive_index (summary indexed, content offloaded), and cold
(content lives in an object store, retrieved on demand). Tier transitions
are monotone under normal operation — hot to cold via the archiver, cold
to hot via the rehydrator.

# Write path

A System.Write call coerces its input into a MemoryItem, applies the
routing policy, and fans the item out to whichever of the metadata store,
vector index, and feature store the policy selects. Semantic graph
extraction always runs, independent of the routing decision.

# Read path

A System.Retrieve call runs a confidence-gated escalation cascade: a hot
sweep per memory type, an optional archive-index escalation when hot
confidence is insufficient, and an optional cold hydration when archive
confidence is still insufficient. Results are deduplicated by item id and
reranked before being returned as a MemoryBundle.

# Workers

Consolidation, archival, rehydration, and compaction are owner-scoped
synchronous passes invoked from System.Flush and System.Rehydrate — not
background goroutines.
*/
package memory
