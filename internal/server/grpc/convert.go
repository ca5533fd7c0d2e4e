package grpc

import (
	"github.com/dmitrijs2005/srefhub/internal/rpc"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

func toProfile(p *models.Profile) *rpc.Profile {
	return &rpc.Profile{
		ID:             p.ID,
		Username:       p.Username,
		Email:          p.Email,
		Tier:           p.Tier,
		WaitlistStatus: p.WaitlistStatus,
		CreatedAt:      p.CreatedAt,
	}
}

func toVote(v *models.Vote) *rpc.Vote {
	return &rpc.Vote{
		UserID:    v.UserID,
		ItemID:    v.ItemID,
		IsUpvote:  v.IsUpvote,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toCode(c *models.Code) rpc.Code {
	return rpc.Code{
		ID:        c.ID,
		UserID:    c.UserID,
		CodeValue: c.CodeValue,
		SVVersion: c.SVVersion,
		Title:     c.Title,
		CopyCount: c.CopyCount,
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
		SaveCount: c.SaveCount,
		Tags:      c.Tags,
		CreatedAt: c.CreatedAt,
	}
}

func toCodeList(codes []*models.Code) *rpc.CodeList {
	out := &rpc.CodeList{Codes: make([]rpc.Code, 0, len(codes))}
	for _, c := range codes {
		out.Codes = append(out.Codes, toCode(c))
	}
	return out
}

func fromCriteria(in *rpc.SearchCriteria) models.SearchCriteria {
	c := models.SearchCriteria{
		Query:      in.Query,
		Tags:       in.Tags,
		SVVersion:  in.SVVersion,
		UpvotesMin: in.UpvotesMin,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if in.From != nil || in.To != nil {
		c.DateRange = &models.DateRange{}
		if in.From != nil {
			c.DateRange.Start = *in.From
		}
		if in.To != nil {
			c.DateRange.End = *in.To
		}
	}
	return c
}

func toCriteria(c *models.SearchCriteria) *rpc.SearchCriteria {
	if c == nil {
		return nil
	}
	out := &rpc.SearchCriteria{
		Query:      c.Query,
		Tags:       c.Tags,
		SVVersion:  c.SVVersion,
		UpvotesMin: c.UpvotesMin,
	}
	if c.DateRange != nil {
		if !c.DateRange.Start.IsZero() {
			start := c.DateRange.Start
			out.From = &start
		}
		if !c.DateRange.End.IsZero() {
			end := c.DateRange.End
			out.To = &end
		}
	}
	return out
}

func toFolder(f *models.Folder) rpc.Folder {
	return rpc.Folder{
		ID:        f.ID,
		Name:      f.Name,
		ParentID:  f.ParentID,
		IsSmart:   f.IsSmart,
		Criteria:  toCriteria(f.Criteria),
		CreatedAt: f.CreatedAt,
	}
}

func toWaitlistEntry(e *models.WaitlistEntry) *rpc.WaitlistEntry {
	return &rpc.WaitlistEntry{
		ID:        e.ID,
		Email:     e.Email,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
	}
}
