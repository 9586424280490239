package planner

import "regexp"

// defaultDomain is the hint used when no technical domain scores a match.
const defaultDomain = "general technology"

type domainPattern struct {
	name string
	re   *regexp.Regexp
}

// domainPatterns lists each recognized technical domain with the keywords
// that vote for it. Matches are counted; the first domain with the most
// matches wins, so the slice order breaks ties deterministically.
var domainPatterns = []domainPattern{
	{"blockchain", regexp.MustCompile(
		`(?i)\b(blockchain|ledger|consensus|mining|block reward|proof[- ]of[- ](work|stake)|merkle)\b`)},
	{"ai/ml", regexp.MustCompile(
		`(?i)\b(machine learning|neural network|deep learning|training data|gradient|transformer|inference|embedding)\b`)},
	{"cryptography", regexp.MustCompile(
		`(?i)\b(encryption|cipher|cryptograph\w*|hash function|digital signature|key exchange|public key)\b`)},
	{"distributed systems", regexp.MustCompile(
		`(?i)\b(distributed|replication|partition tolerance|fault[- ]toleran\w*|quorum|raft|paxos|gossip)\b`)},
	{"web3", regexp.MustCompile(
		`(?i)\b(web3|smart contract|ethereum|solidity|dapp|token\w*|defi|nft)\b`)},
}

// DetectDomain classifies the document into one of a small set of technical
// domains by keyword frequency. The result is prompt context only; a wrong
// guess degrades quality, not correctness.
func DetectDomain(text string) string {
	best := defaultDomain
	bestCount := 0

	for _, dp := range domainPatterns {
		count := len(dp.re.FindAllString(text, -1))
		if count > bestCount {
			best = dp.name
			bestCount = count
		}
	}

	return best
}
