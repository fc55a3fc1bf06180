// Package pipeline runs a wordscraper job as a sequence of steps.
//
// A run crawls the seed, then either searches the index for target words
// or selects the longest words and expands them with the mutation engine.
// Each stage is a Step that receives the shared RunReport and fills in its
// part; steps that do not apply to the run skip themselves.
//
// Keeping the stages behind one interface gives them uniform logging,
// error recording and cancellation checks between steps.
package pipeline
