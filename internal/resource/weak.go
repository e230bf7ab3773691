// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import "weak"

func weakEntry[T any](r *Resource[T]) cacheEntry {
	wp := weak.Make(r)
	return cacheEntry{
		value: func() any {
			if v := wp.Value(); v != nil {
				return v
			}
			return nil
		},
	}
}
