// Package session defines the common document schema shared by every
// pipeline stage: a session document with meta information and an ordered
// list of speech items, each carrying people, text contents, referenced
// documents, media pointers, and merge provenance.
package session
