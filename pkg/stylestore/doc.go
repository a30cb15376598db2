// Package stylestore opens style sources from a source string.
//
// Each backend lives in its own subpackage and implements [style.Source]:
//
//   - file: TOML or HCL documents ("file:styles.toml", "file:styles.hcl")
//   - redis: Redis hashes ("redis://localhost:6379/0")
//   - mongo: MongoDB collections ("mongodb://localhost:27017/pvm")
//   - sqlstore: libSQL tables ("libsql:file:/var/lib/pvmviz/styles.db")
//
// [Open] picks the backend by prefix. The empty string selects the built-in
// table.
package stylestore
