// Package generate implements greedy autoregressive decoding over an
// encoder-decoder network.
//
// Decoding starts from the prefix [<start>] and, at every step, runs a full
// forward pass over (source, prefix), appends the arg-max of the last
// position's logits, and stops when <end> is appended or MaxSteps is reached.
// There is no key/value cache: each step recomputes the whole prefix.
//
// A Session exposes the state machine one step at a time:
//
//	INITIAL --Step--> STEPPING --Step--> ... --> DONE
//
// Decoder.Decode runs a session to completion.
package generate
