// Command bountyagent is an autonomous worker that discovers bounties, judges them with an
// LLM, claims the suitable ones and submits generated work.
package main

func main() {
	Execute()
}
