package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import _ "embed"

// interactiveScript is the fixed JavaScript blob embedded into every SVG:
// details bar, click-to-zoom, and regex search. It reads its parameters from
// the fg object emitted just before it.
//
//go:embed assets/flamegraph.js
var interactiveScript string
