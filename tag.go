/*
Copyright © 2018 the PopBal authors.
This file is part of PopBal.

PopBal is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PopBal is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PopBal.  If not, see <http://www.gnu.org/licenses/>.
*/

package popbal

import (
	"fmt"
	"strings"
)

// A Tag is the symbolic name of a field. Expressions refer to their inputs
// and outputs by Tag; the FieldManager resolves Tags to concrete fields.
type Tag string

// A TagList is an ordered list of Tags.
type TagList []Tag

// Tags creates a TagList from the given names.
func Tags(names ...string) TagList {
	l := make(TagList, len(names))
	for i, n := range names {
		l[i] = Tag(n)
	}
	return l
}

// IndexedTags creates a TagList of n Tags named prefix_0 through
// prefix_(n-1).
func IndexedTags(prefix string, n int) TagList {
	l := make(TagList, n)
	for i := range l {
		l[i] = Tag(fmt.Sprintf("%s_%d", prefix, i))
	}
	return l
}

// PairTags creates a TagList of n² Tags named prefix_i_j for every ordered
// pair (i,j) with i and j in [0,n), laid out in row-major order so that
// pair (i,j) is at index i*n+j.
func PairTags(prefix string, n int) TagList {
	l := make(TagList, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			l = append(l, Tag(fmt.Sprintf("%s_%d_%d", prefix, i, j)))
		}
	}
	return l
}

func (l TagList) String() string {
	s := make([]string, len(l))
	for i, t := range l {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}
