package plasticity

// HealthReport summarizes overall network condition. Score blends three
// terms: the fraction of live nodes (50%), the mean edge weight (30%), and
// redundant path coverage relative to node count (20%).
type HealthReport struct {
	Score          float64 `json:"score"`
	ActiveNodes    int     `json:"active_nodes"`
	TotalNodes     int     `json:"total_nodes"`
	MeanEdgeWeight float64 `json:"mean_edge_weight"`
	RedundantPaths int     `json:"redundant_paths"`
}

// AssessNetworkHealth scores the network:
//
//	score = 0.5*(activeNodes/totalNodes) + 0.3*meanEdgeWeight +
//	        0.2*min(1, redundantPathCount/nodeCount)
//
// An empty circuit scores zero.
func (e *Engine) AssessNetworkHealth() HealthReport {
	nodes := e.circuit.Nodes()
	report := HealthReport{TotalNodes: len(nodes)}
	if len(nodes) == 0 {
		return report
	}

	for _, n := range nodes {
		if nodeLive(n) {
			report.ActiveNodes++
		}
	}
	activeRatio := float64(report.ActiveNodes) / float64(report.TotalNodes)

	edges := e.circuit.Connections()
	if len(edges) > 0 {
		var total float64
		for _, edge := range edges {
			total += edge.Weight()
		}
		report.MeanEdgeWeight = total / float64(len(edges))
	}

	e.mu.Lock()
	for _, paths := range e.redundant {
		report.RedundantPaths += len(paths)
	}
	e.mu.Unlock()

	redundancy := float64(report.RedundantPaths) / float64(report.TotalNodes)
	if redundancy > 1 {
		redundancy = 1
	}

	report.Score = 0.5*activeRatio + 0.3*report.MeanEdgeWeight + 0.2*redundancy
	return report
}

// GetStatistics returns the engine's counter snapshot. ActivePathways
// counts registered primary and redundant routes.
func (e *Engine) GetStatistics() Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()

	pathways := len(e.primary)
	for _, paths := range e.redundant {
		pathways += len(paths)
	}

	return Statistics{
		TotalConnections:  e.circuit.ConnectionCount(),
		ActivePathways:    pathways,
		PrunedConnections: e.prunedCount,
		RewiresPerformed:  e.rewireCount,
		FailoversExecuted: e.failoverCount,
	}
}
