// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package conversion

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gomlx/gpulower/pkg/lowering/lltypes"
	"github.com/gomlx/gpulower/pkg/lowering/typeconv"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// GPULOWER_CONFIG is the environment variable with the default configuration of the lowering,
// see ParseOptions for the format.
const GPULOWER_CONFIG = "GPULOWER_CONFIG"

// Options configure the lowering. They are created once, before the patterns are registered,
// and are not changed afterwards.
type Options struct {
	// WarpSize is the number of threads per warp. If 0 the threads of the layouts are not checked.
	WarpSize int

	// NumWarps is the number of warps per CTA. If 0 (the default) the warps of the layouts are not checked.
	NumWarps int

	// SharedAddressSpace is the address space of pointers to shared memory.
	SharedAddressSpace int

	// IndexBitWidth is the width of the strides and offsets of tensors in shared memory: 32 or 64.
	IndexBitWidth int
}

// DefaultOptions returns the options for NVIDIA GPUs: warps of 32 threads, shared memory in address space 3
// and 32 bits indices.
func DefaultOptions() Options {
	return Options{
		WarpSize:           32,
		SharedAddressSpace: typeconv.DefaultSharedAddressSpace,
		IndexBitWidth:      32,
	}
}

// ParseOptions returns DefaultOptions changed by the given configuration.
//
// The config is a comma-separated list of "key=value" pairs. The keys are:
//
//   - "warp_size": number of threads per warp, 0 to disable checking.
//   - "num_warps": number of warps per CTA, 0 to disable checking.
//   - "shared_address_space": address space of shared memory pointers.
//   - "index_bits": width of shared memory strides and offsets, 32 or 64.
//
// Example: "num_warps=4,index_bits=64".
func ParseOptions(config string) (Options, error) {
	return DefaultOptions().WithConfig(config)
}

// WithConfig returns a copy of the options changed by the given configuration. See ParseOptions for the format.
func (o Options) WithConfig(config string) (Options, error) {
	if config == "" {
		return o, o.Validate()
	}
	parts := strings.Split(config, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return o, errors.Errorf("invalid configuration option %q, expected \"key=value\"", part)
		}
		key = strings.TrimSpace(key)
		intValue, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return o, errors.Wrapf(err, "invalid value for configuration option %q", key)
		}
		switch key {
		case "warp_size":
			o.WarpSize = intValue
		case "num_warps":
			o.NumWarps = intValue
		case "shared_address_space":
			o.SharedAddressSpace = intValue
		case "index_bits":
			o.IndexBitWidth = intValue
		default:
			return o, errors.Errorf("unknown configuration option %q", key)
		}
	}
	return o, o.Validate()
}

// OptionsFromEnv returns the options configured by the environment variable GPULOWER_CONFIG, or
// DefaultOptions if it is not set.
func OptionsFromEnv() (Options, error) {
	config, found := os.LookupEnv(GPULOWER_CONFIG)
	if !found {
		return DefaultOptions(), nil
	}
	klog.Warningf("Default lowering options overridden by %s=%q", GPULOWER_CONFIG, config)
	opts, err := ParseOptions(config)
	if err != nil {
		return opts, errors.WithMessagef(err, "parsing $%s", GPULOWER_CONFIG)
	}
	return opts, nil
}

// Validate returns an error if the options are invalid.
func (o Options) Validate() error {
	if o.WarpSize < 0 || o.NumWarps < 0 {
		return errors.Errorf("invalid options %s: warp_size and num_warps must be >= 0", o)
	}
	if o.SharedAddressSpace < 0 {
		return errors.Errorf("invalid options %s: shared_address_space must be >= 0", o)
	}
	if o.IndexBitWidth != 32 && o.IndexBitWidth != 64 {
		return errors.Errorf("invalid options %s: index_bits must be 32 or 64", o)
	}
	return nil
}

// String returns the options in the configuration format accepted by ParseOptions.
func (o Options) String() string {
	return fmt.Sprintf("warp_size=%d,num_warps=%d,shared_address_space=%d,index_bits=%d",
		o.WarpSize, o.NumWarps, o.SharedAddressSpace, o.IndexBitWidth)
}

// NewConverter returns the type converter configured by the options.
func (o Options) NewConverter() (*typeconv.Converter, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &typeconv.Converter{
		SharedAddressSpace: o.SharedAddressSpace,
		IndexType:          lltypes.Int(o.IndexBitWidth),
		WarpSize:           o.WarpSize,
		NumWarps:           o.NumWarps,
	}, nil
}
