package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jacob-meacham/tempo-mcp/internal/calendar"
	"github.com/jacob-meacham/tempo-mcp/internal/instrumentation"
	"github.com/jacob-meacham/tempo-mcp/internal/server"
	"github.com/jacob-meacham/tempo-mcp/internal/tools/common"
)

// RegisterProposalTools registers the proposal workflow tools
func RegisterProposalTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Propose events tool
	proposeTool := mcp.NewTool("propose_events",
		mcp.WithDescription("Stage a batch of candidate events as a proposal. Proposed events do not affect free/busy queries until committed."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Human-readable proposal name"),
		),
		mcp.WithArray("events",
			mcp.Required(),
			mcp.Description("Array of event objects: {title, start, end, timezone?, rrule?, metadata?}"),
		),
	)

	s.AddTool(proposeTool, common.InstrumentedToolHandler("propose_events", instrumentation.OperationPropose, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleProposeEvents(ctx, request, sc)
		}))

	// Check conflicts tool
	checkTool := mcp.NewTool("check_conflicts",
		mcp.WithDescription("Check a proposal against existing events (recurring events expanded) and optionally against itself. Read-only: the proposal stays staged."),
		mcp.WithString("proposal_id",
			mcp.Required(),
			mcp.Description("The proposal to check"),
		),
		mcp.WithString("calendar",
			mcp.Description("Calendar to check against. Omit to check against all calendars."),
		),
		mcp.WithBoolean("check_internal",
			mcp.Description("Also report overlaps between events of the proposal itself (default: true)"),
		),
	)

	s.AddTool(checkTool, common.InstrumentedToolHandler("check_conflicts", instrumentation.OperationCheck, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckConflicts(ctx, request, sc)
		}))

	// List proposals tool
	listTool := mcp.NewTool("list_proposals",
		mcp.WithDescription("List all staged proposals, oldest first."),
	)

	s.AddTool(listTool, common.InstrumentedToolHandler("list_proposals", instrumentation.OperationQuery, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListProposals(ctx, request, sc)
		}))

	// Withdraw proposal tool
	withdrawTool := mcp.NewTool("withdraw_proposal",
		mcp.WithDescription("Discard a staged proposal without committing it."),
		mcp.WithString("proposal_id",
			mcp.Required(),
			mcp.Description("The proposal to withdraw"),
		),
	)

	s.AddTool(withdrawTool, common.InstrumentedToolHandler("withdraw_proposal", instrumentation.OperationWithdraw, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWithdrawProposal(ctx, request, sc)
		}))

	// Commit proposal tool
	commitTool := mcp.NewTool("commit_proposal",
		mcp.WithDescription("Commit a staged proposal into a calendar, minting fresh event IDs. Conflicts are NOT re-checked; use propose_and_commit for an atomic check-and-commit."),
		mcp.WithString("proposal_id",
			mcp.Required(),
			mcp.Description("The proposal to commit"),
		),
		mcp.WithString("calendar",
			mcp.Description("Target calendar name (default: 'default')"),
		),
	)

	s.AddTool(commitTool, common.InstrumentedToolHandler("commit_proposal", instrumentation.OperationCommit, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCommitProposal(ctx, request, sc)
		}))

	// Atomic propose-and-commit tool
	proposeAndCommitTool := mcp.NewTool("propose_and_commit",
		mcp.WithDescription("Atomically stage, conflict-check and commit a batch of events in one step. If any conflict is found nothing is committed and the conflicts are returned."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Human-readable proposal name"),
		),
		mcp.WithArray("events",
			mcp.Required(),
			mcp.Description("Array of event objects: {title, start, end, timezone?, rrule?, metadata?}"),
		),
		mcp.WithString("calendar",
			mcp.Description("Target calendar name (default: 'default')"),
		),
	)

	s.AddTool(proposeAndCommitTool, common.InstrumentedToolHandler("propose_and_commit", instrumentation.OperationCommit, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleProposeAndCommit(ctx, request, sc)
		}))

	return nil
}

// decodeProposedEvents validates the events argument into proposal candidates
func decodeProposedEvents(raw interface{}) ([]calendar.ProposedEvent, error) {
	inputs, err := decodeEventInputs(raw)
	if err != nil {
		return nil, err
	}
	proposed := make([]calendar.ProposedEvent, 0, len(inputs))
	for _, in := range inputs {
		pe, err := in.toProposed()
		if err != nil {
			return nil, err
		}
		proposed = append(proposed, pe)
	}
	return proposed, nil
}

// handleProposeEvents handles the propose_events tool
func handleProposeEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := requireString(args, "name")
	if err != nil {
		return toolError(err), nil
	}
	proposed, err := decodeProposedEvents(args["events"])
	if err != nil {
		return toolError(err), nil
	}

	id, err := sc.Store().Propose(name, proposed)
	if err != nil {
		return toolError(err), nil
	}

	if metrics := sc.Metrics(); metrics != nil {
		metrics.IncrementActiveProposals(ctx)
	}

	return jsonResult(map[string]interface{}{
		"proposal_id": id,
		"name":        name,
		"event_count": len(proposed),
	})
}

// handleCheckConflicts handles the check_conflicts tool
func handleCheckConflicts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	proposalID, err := requireString(args, "proposal_id")
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	checkInternal := true
	if val, ok := args["check_internal"].(bool); ok {
		checkInternal = val
	}

	report, err := sc.Store().CheckConflicts(calendar.ProposalID(proposalID), calendarName, checkInternal)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(report)
}

// handleListProposals handles the list_proposals tool
func handleListProposals(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	proposals := sc.Store().Proposals()

	summaries := make([]map[string]interface{}, 0, len(proposals))
	for _, p := range proposals {
		summaries = append(summaries, map[string]interface{}{
			"proposal_id": p.ID,
			"name":        p.Name,
			"event_count": len(p.Events),
			"created_at":  p.CreatedAt,
		})
	}

	return jsonResult(map[string]interface{}{
		"count":     len(summaries),
		"proposals": summaries,
	})
}

// handleWithdrawProposal handles the withdraw_proposal tool
func handleWithdrawProposal(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	proposalID, err := requireString(args, "proposal_id")
	if err != nil {
		return toolError(err), nil
	}

	if err := sc.Store().Withdraw(calendar.ProposalID(proposalID)); err != nil {
		return toolError(err), nil
	}

	if metrics := sc.Metrics(); metrics != nil {
		metrics.DecrementActiveProposals(ctx)
	}

	return jsonResult(map[string]interface{}{
		"proposal_id": proposalID,
		"withdrawn":   true,
	})
}

// handleCommitProposal handles the commit_proposal tool
func handleCommitProposal(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	proposalID, err := requireString(args, "proposal_id")
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	ids, err := sc.Store().Commit(calendar.ProposalID(proposalID), calendarName)
	if err != nil {
		return toolError(err), nil
	}

	if metrics := sc.Metrics(); metrics != nil {
		metrics.DecrementActiveProposals(ctx)
	}

	return jsonResult(map[string]interface{}{
		"proposal_id": proposalID,
		"calendar":    calendar.CanonicalName(calendarName),
		"event_count": len(ids),
		"event_ids":   ids,
	})
}

// handleProposeAndCommit handles the propose_and_commit tool
func handleProposeAndCommit(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := requireString(args, "name")
	if err != nil {
		return toolError(err), nil
	}
	proposed, err := decodeProposedEvents(args["events"])
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	result, err := sc.Store().ProposeAndCommit(name, proposed, calendarName)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]interface{}{
		"committed":   result.Committed,
		"calendar":    calendar.CanonicalName(calendarName),
		"event_ids":   result.EventIDs,
		"event_count": len(result.EventIDs),
		"conflicts":   result.Conflicts,
	})
}
