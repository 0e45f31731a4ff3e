// Package category maps raw genre strings onto a small canonical vocabulary
// for the programme guide.
//
// The table is an ordered YAML list of canonical names and the raw strings
// that imply them. A built-in table is embedded; [categories].table_path may
// point at a replacement file.
package category
