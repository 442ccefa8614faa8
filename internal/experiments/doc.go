// Package experiments implements the experiment configuration workflow:
// fetching the remote configuration document, asking the host which
// experiments are active, merging the two into display rows, and pushing
// override toggles back to the host.
//
// A refresh cycle moves through Idle → Fetching → Merging → Done, or ends
// in Failed. Failed cycles leave stored rows and rendered pages untouched.
// Nothing is cached between cycles: the configuration document, the enabled
// set and the override flags are re-read every time.
package experiments
