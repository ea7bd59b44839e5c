// Package ir provides the value and schema vocabulary shared by every other
// schemata package.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - numbers are int64
//   - Schema types are plain data, built once and never mutated
//   - Entities are identified by (Class, ID), never by field values
//   - Stored field JSON is RFC 8785 canonical, strings NFC normalized
package ir
