// Package s3 provides Amazon S3 backed artifact storage.
//
// Store streams exported label files through multipart uploads and serves
// reads through ranged GetObject requests. CommitStore layers DynamoDB on
// top to give the CURRENT run pointer the compare-and-swap update S3 cannot
// provide on its own.
package s3
