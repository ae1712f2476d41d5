// Package pgstore implements the repositories on Postgres. Embeddings live
// in a pgvector column and are ranked by cosine distance (the <=> operator).
//
// Every method resolves its connection through pg.Conn, so calls made with
// a context carrying a transaction (pg.WithTx) join that transaction.
package pgstore
