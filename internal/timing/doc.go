// Package timing attaches timecodes to session transcripts. Speech
// sentences are force-aligned against the recording through the aeneas
// engine; comment segments, which are inaudible stage directions, inherit
// approximate timecodes from their aligned neighbors.
package timing
